package taskmgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	order := []int{}
	mw := func(n int) Middleware {
		return func(next Body) Body {
			return func() Outcome {
				order = append(order, n)
				return next()
			}
		}
	}
	b := Chain(func() Outcome { order = append(order, 0); return Outcome{} }, mw(1), mw(2))
	b()
	// first middleware is the outermost
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestDelay(t *testing.T) {
	b := Chain(Task{Addition, 1, 2}.Execute, Delay(30*time.Millisecond))
	start := time.Now()
	o := b()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, int64(3), o.Value)

	// zero delay returns the body untouched
	called := false
	body := func() Outcome { called = true; return Outcome{} }
	Delay(0)(body)()
	require.True(t, called)
}

func TestLogOutcome(t *testing.T) {
	l := &recLogger{}
	Chain(Task{Addition, 7, 3}.Execute, LogOutcome(l))()
	Chain(Task{Division, 7, 0}.Execute, LogOutcome(l))()
	assert.Equal(t, []string{
		"INFO Addition: 7 + 3 = 10",
		"WARN Division by zero error!",
	}, l.all())
}
