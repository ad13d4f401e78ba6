package taskmgr

import (
	"context"
	"errors"
	"time"
)

// Worker exit codes.
const (
	ExitOK               = 0
	ExitUnrecognizedKind = 1
	ExitChannelFailure   = 2
)

// WorkerConfig configures RunWorker.
type WorkerConfig struct {
	// Timeout is the deadlock timeout of the worker queue. Zero flags any
	// task that takes a millisecond or more.
	Timeout time.Duration
	// TaskDelay is the pause applied before the task body.
	TaskDelay time.Duration
	// Middlewares run inside the delay, around the task body.
	Middlewares []Middleware
	// Logger receives task output and diagnostics.
	Logger Logger
	// ID tags log lines with the dispatch they belong to.
	ID string
}

// RunWorker is the worker side of one dispatch: it reads the record from ch,
// runs the matching task through a fresh queue and returns the exit code.
// Stalls and divide-by-zero still exit with ExitOK.
func RunWorker(ctx context.Context, ch Channel, cfg WorkerConfig) int {
	log := defaultLogger(cfg.Logger)

	rec, err := ch.Read(ctx)
	if err != nil {
		log.Errorf("worker %s: read channel: %v", cfg.ID, err)
		return ExitChannelFailure
	}
	task, err := NewTask(rec)
	if err != nil {
		log.Errorf("worker %s: invalid task identifier %d: %v", cfg.ID, int32(rec.Kind), err)
		return ExitUnrecognizedKind
	}
	log.Debugf("worker %s: read kind=%s a=%d b=%d", cfg.ID, task.Kind, task.A, task.B)

	q := NewQueue(Timeout(cfg.Timeout), WithLogger(log))

	mws := append([]Middleware{Delay(cfg.TaskDelay)}, cfg.Middlewares...)
	mws = append(mws, LogOutcome(log))
	body := Chain(task.Execute, mws...)
	q.Enqueue(func() { _ = body() })

	rep, _ := q.Run()
	if rep.Stalled {
		log.Debugf("worker %s: stalled after %s, %d job(s) abandoned", cfg.ID, rep.StallDuration, rep.Remaining)
	}
	return ExitOK
}

// exitCodeError maps an exit code to the error it represents.
func exitCodeError(code int) error {
	switch code {
	case ExitOK:
		return nil
	case ExitUnrecognizedKind:
		return ErrUnrecognizedKind
	case ExitChannelFailure:
		return ErrAttachFailed
	default:
		return errors.New("taskmgr: worker failed")
	}
}
