package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	require.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	require.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNew_Defaults(t *testing.T) {
	l := New(nil)
	require.NotNil(t, l)
	require.True(t, l.Core().Enabled(zapcore.InfoLevel))
	require.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_FileOutput(t *testing.T) {
	p := filepath.Join(t.TempDir(), "taskmgr.log")
	l := New(&Config{Level: "debug", Format: "json", Output: "file", FilePath: p, MaxSize: 1})
	l.Debug("hello from test")
	_ = l.Sync()

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello from test"`)
	require.Contains(t, string(data), `"level":"debug"`)
}
