package taskmgr

import "time"

// Body produces the outcome of one task execution.
type Body func() Outcome

// Middleware wraps a Body to add behaviour around task execution.
type Middleware func(Body) Body

// Chain applies middlewares so that the first one is the outermost.
func Chain(b Body, mws ...Middleware) Body {
	for i := len(mws) - 1; i >= 0; i-- {
		b = mws[i](b)
	}
	return b
}

// Delay pauses for d before running the body. Zero or negative d is a no-op.
func Delay(d time.Duration) Middleware {
	return func(next Body) Body {
		if d <= 0 {
			return next
		}
		return func() Outcome {
			time.Sleep(d)
			return next()
		}
	}
}

// LogOutcome logs each outcome: results at info, divide-by-zero diagnostics at warn.
func LogOutcome(l Logger) Middleware {
	return func(next Body) Body {
		return func() Outcome {
			o := next()
			if o.Err != nil {
				l.Warnf("%s", o.Message)
			} else {
				l.Infof("%s", o.Message)
			}
			return o
		}
	}
}
