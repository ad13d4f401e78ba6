package taskmgr

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recLogger captures formatted lines per level for assertions.
type recLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recLogger) add(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recLogger) Debugf(format string, args ...any) { r.add("DEBUG", format, args...) }
func (r *recLogger) Infof(format string, args ...any)  { r.add("INFO", format, args...) }
func (r *recLogger) Warnf(format string, args ...any)  { r.add("WARN", format, args...) }
func (r *recLogger) Errorf(format string, args ...any) { r.add("ERROR", format, args...) }

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

func (r *recLogger) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *recLogger) has(line string) bool {
	for _, l := range r.all() {
		if l == line {
			return true
		}
	}
	return false
}

func TestFmtLogger_NoPanic(t *testing.T) {
	l := NewFmtLogger()
	l.Debugf("debug %d", 1)
	l.Infof("info %s", "x")
	l.Warnf("warn")
	l.Errorf("error %v", fmt.Errorf("boom"))
}

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core))
	l.Debugf("d %d", 1)
	l.Infof("i %s", "two")
	l.Warnf("w")
	l.Errorf("e")
	require.NoError(t, l.Sync())

	entries := logs.All()
	require.Len(t, entries, 4)
	require.Equal(t, "d 1", entries[0].Message)
	require.Equal(t, "i two", entries[1].Message)
	require.Equal(t, zap.WarnLevel, entries[2].Level)
	require.Equal(t, zap.ErrorLevel, entries[3].Level)
}

func TestDefaultLogger(t *testing.T) {
	require.IsType(t, &FmtLogger{}, defaultLogger(nil))
	r := &recLogger{}
	require.Same(t, r, defaultLogger(r))
}
