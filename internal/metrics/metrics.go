// Package metrics records dispatch round-trip latencies.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minMicros = 1
	maxMicros = int64(time.Hour / time.Microsecond)
	sigFigs   = 3
)

// Snapshot is a point-in-time view of a Recorder.
type Snapshot struct {
	Count  int64         `json:"count"`
	Failed int64         `json:"failed"`
	P50    time.Duration `json:"p50"`
	P99    time.Duration `json:"p99"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
}

// Recorder accumulates latencies. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	hist   *hdrhistogram.Histogram
	failed int64
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{hist: hdrhistogram.New(minMicros, maxMicros, sigFigs)}
}

// Observe records one dispatch. Values beyond the tracked range are clamped.
func (r *Recorder) Observe(d time.Duration, failed bool) {
	us := d.Microseconds()
	if us < minMicros {
		us = minMicros
	} else if us > maxMicros {
		us = maxMicros
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.hist.RecordValue(us)
	if failed {
		r.failed++
	}
}

// Snapshot returns the current counters and percentiles.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{Count: r.hist.TotalCount(), Failed: r.failed}
	if s.Count == 0 {
		return s
	}
	s.P50 = micros(r.hist.ValueAtQuantile(50))
	s.P99 = micros(r.hist.ValueAtQuantile(99))
	s.Max = micros(r.hist.Max())
	s.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	return s
}

func micros(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
