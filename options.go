package taskmgr

import "time"

// DefaultTimeout is the deadlock timeout applied when none is configured.
const DefaultTimeout = 1000 * time.Millisecond

// DefaultTaskDelay is the artificial pause before every task body. It makes
// the stall detector observable with the default timeout.
const DefaultTaskDelay = 2000 * time.Millisecond

type options struct {
	timeout time.Duration
	logger  Logger
	now     func() time.Time
}

// Option configures a Queue.
type Option func(*options)

// Timeout sets the per-job deadlock timeout.
func Timeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger used for stall and panic diagnostics.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock overrides the time source used to measure jobs. Override in tests for determinism.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = defaultLogger(o.logger)
	return o
}
