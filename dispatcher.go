package taskmgr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UniQw/taskmgr/internal/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/UniQw/taskmgr"

// DispatcherConfig defines the configuration for a Dispatcher.
type DispatcherConfig struct {
	// Channel carries records to workers.
	Channel Channel
	// Spawner starts workers. Defaults to an ExecSpawner.
	Spawner Spawner
	// Timeout is the deadlock timeout handed to every worker. Zero means
	// DefaultTimeout; use SetTimeout for a zero timeout.
	Timeout time.Duration
	// TaskDelay is the pause every worker applies before its task body.
	TaskDelay time.Duration
	// Logger is the logger used for dispatch events.
	Logger Logger
}

// Result describes one Submit.
type Result struct {
	ID       string        `json:"id"`
	Record   Record        `json:"record"`
	ExitCode int           `json:"exit_code"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Err maps the worker exit code to an error, nil on success.
func (r Result) Err() error { return exitCodeError(r.ExitCode) }

// Stats summarizes dispatches since the Dispatcher was created.
type Stats = metrics.Snapshot

// Dispatcher hands records to freshly spawned workers one at a time.
type Dispatcher struct {
	ch      Channel
	spawner Spawner
	log     Logger
	timeout atomic.Int64
	delay   time.Duration
	busy    atomic.Bool
	mu      sync.Mutex // one outstanding submit
	stats   *metrics.Recorder
}

// NewDispatcher creates a Dispatcher. A zero Timeout means DefaultTimeout;
// TaskDelay is used as given.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	sp := cfg.Spawner
	if sp == nil {
		sp = &ExecSpawner{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		ch:      cfg.Channel,
		spawner: sp,
		log:     defaultLogger(cfg.Logger),
		delay:   cfg.TaskDelay,
		stats:   metrics.New(),
	}
	d.timeout.Store(int64(timeout))
	return d
}

// SetTimeout changes the deadlock timeout for later submits. Zero is kept
// as given.
func (d *Dispatcher) SetTimeout(t time.Duration) { d.timeout.Store(int64(t)) }

// Timeout returns the deadlock timeout handed to workers.
func (d *Dispatcher) Timeout() time.Duration { return time.Duration(d.timeout.Load()) }

// Busy reports whether a worker is in flight.
func (d *Dispatcher) Busy() bool { return d.busy.Load() }

// State returns StateRunning while a worker is in flight.
func (d *Dispatcher) State() State { return stateOf(d.busy.Load()) }

// Stats returns dispatch counters and latency percentiles.
func (d *Dispatcher) Stats() Stats { return d.stats.Snapshot() }

// Channel returns the channel records are written to.
func (d *Dispatcher) Channel() Channel { return d.ch }

// Submit writes r to the channel, spawns a worker and waits for it to exit.
// The write completes before the worker is spawned. A non-zero exit code is
// reported in the Result, not as an error.
func (d *Dispatcher) Submit(ctx context.Context, r Record) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := Result{ID: uuid.NewString(), Record: r, ExitCode: -1}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "taskmgr.submit", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.id", res.ID),
		attribute.Int("task.kind", int(r.Kind)),
	)

	start := time.Now()
	if err := d.ch.Write(ctx, r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Errorf("dispatch %s: write channel: %v", res.ID, err)
		return res, err
	}

	inv := Invocation{
		ID:        res.ID,
		Channel:   d.ch.Spec(),
		Timeout:   d.Timeout(),
		TaskDelay: d.delay,
	}
	d.busy.Store(true)
	defer d.busy.Store(false)

	proc, err := d.spawner.Spawn(ctx, inv)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.stats.Observe(time.Since(start), true)
		d.log.Errorf("dispatch %s: spawn: %v", res.ID, err)
		return res, err
	}
	d.log.Debugf("dispatch %s: worker started kind=%s a=%d b=%d", res.ID, r.Kind, r.A, r.B)

	code, err := proc.Wait()
	res.Elapsed = time.Since(start)
	res.ExitCode = code
	if err != nil {
		err = fmt.Errorf("dispatch %s: wait: %w", res.ID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.stats.Observe(res.Elapsed, true)
		d.log.Errorf("%v", err)
		return res, err
	}
	span.SetAttributes(attribute.Int("worker.exit_code", code))
	d.stats.Observe(res.Elapsed, code != ExitOK)
	if code != ExitOK {
		span.SetStatus(codes.Error, "worker failed")
		d.log.Warnf("dispatch %s: worker exited with code %d", res.ID, code)
	} else {
		d.log.Debugf("dispatch %s: worker done in %s", res.ID, res.Elapsed)
	}
	return res, nil
}

// Inspect reads the record currently held by the channel.
func (d *Dispatcher) Inspect(ctx context.Context) (Record, error) {
	return d.ch.Read(ctx)
}

// Clear destroys the channel slot. Later Inspect calls fail with
// ErrAttachFailed until the next Submit recreates it.
func (d *Dispatcher) Clear(ctx context.Context) error {
	return d.ch.Destroy(ctx)
}
