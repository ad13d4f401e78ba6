package taskmgr

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Job is a deferred computation executed at most once by a Queue.
type Job func()

// Report summarizes one Run.
type Report struct {
	// Executed is the number of jobs that ran, including a stalled one.
	Executed int
	// Stalled is set when a job exceeded the deadlock timeout and the run stopped.
	Stalled bool
	// StallDuration is how long the stalled job took.
	StallDuration time.Duration
	// Remaining is the number of jobs left queued when Run returned.
	Remaining int
}

// Queue executes jobs in FIFO order on the calling goroutine and flags jobs
// that overrun the deadlock timeout. Detection happens after the job returns;
// a job is never interrupted.
type Queue struct {
	mu      sync.Mutex
	jobs    []Job
	timeout atomic.Int64
	running atomic.Bool
	now     func() time.Time
	log     Logger
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	o := newOptions(opts)
	q := &Queue{now: o.now, log: o.logger}
	q.timeout.Store(int64(o.timeout))
	return q
}

// Enqueue appends a job to the tail. It is safe to call from any goroutine.
func (q *Queue) Enqueue(j Job) {
	if j == nil {
		return
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()
}

// SetTimeout changes the deadlock timeout for jobs dequeued after the call.
func (q *Queue) SetTimeout(d time.Duration) { q.timeout.Store(int64(d)) }

// Timeout returns the current deadlock timeout.
func (q *Queue) Timeout() time.Duration { return time.Duration(q.timeout.Load()) }

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Clear drops every pending job and returns how many were dropped. A job
// already executing is not affected.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.jobs)
	clear(q.jobs)
	q.jobs = q.jobs[:0]
	return n
}

// IsProcessing reports whether Run is executing. It never blocks.
func (q *Queue) IsProcessing() bool { return q.running.Load() }

// State returns StateRunning while Run is executing, StateIdle otherwise.
func (q *Queue) State() State { return stateOf(q.running.Load()) }

// Run executes queued jobs until the queue is empty or a job exceeds the
// deadlock timeout, measured in whole milliseconds. On a stall the remaining
// jobs stay queued.
func (q *Queue) Run() (Report, error) {
	if !q.running.CompareAndSwap(false, true) {
		return Report{}, ErrQueueRunning
	}
	defer q.running.Store(false)

	var rep Report
	for {
		j, ok := q.pop()
		if !ok {
			break
		}
		timeout := q.Timeout()
		start := q.now()
		q.exec(j)
		elapsed := q.now().Sub(start)
		rep.Executed++
		// compared in whole milliseconds
		if elapsed.Truncate(time.Millisecond) > timeout {
			rep.Stalled = true
			rep.StallDuration = elapsed
			q.log.Warnf("potential deadlock detected: job took %s, timeout %s", elapsed, timeout)
			break
		}
	}
	rep.Remaining = q.Len()
	return rep, nil
}

func (q *Queue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, false
	}
	j := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return j, true
}

func (q *Queue) exec(j Job) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Errorf("job panic: %v\n%s", r, debug.Stack())
		}
	}()
	j()
}
