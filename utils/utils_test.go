package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/awantoch/flowviz/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func captureInternal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetInternalOutput(&buf)
	t.Cleanup(func() { SetInternalOutput(os.Stderr) })
	return &buf
}

func TestUserOutput(t *testing.T) {
	var buf bytes.Buffer
	SetUserOutput(&buf)
	defer SetUserOutput(os.Stdout)

	User("diagram written to %s", "out.md")
	assert.Equal(t, "diagram written to out.md\n", buf.String())
}

func TestInternalOutputLevels(t *testing.T) {
	buf := captureInternal(t)
	Info("info %d", 1)
	Warn("warn %d", 2)
	Error("error %d", 3)
	Debug("debug %d", 4)

	out := buf.String()
	for _, want := range []string{"info 1", "warn 2", "error 3", "debug 4"} {
		assert.Contains(t, out, want)
	}
}

func TestErrorf(t *testing.T) {
	buf := captureInternal(t)
	base := errors.New("boom")
	err := Errorf("render %s: %w", "flow", base)
	require.Error(t, err)
	assert.True(t, errors.Is(err, base))
	assert.Contains(t, buf.String(), "render flow: boom")
}

func TestComponentf(t *testing.T) {
	buf := captureInternal(t)
	sentinel := errors.New("no-renderable-content-found")

	err := Componentf("flowviz", sentinel)
	assert.Same(t, sentinel, err)
	assert.Contains(t, buf.String(), "no-renderable-content-found")
	assert.Contains(t, buf.String(), "flowviz")

	assert.NoError(t, Componentf("flowviz", nil))
}

func TestSetMode(t *testing.T) {
	t.Setenv(constants.EnvDebug, "")
	t.Cleanup(func() { SetMode("production") })

	SetMode("debug")
	assert.True(t, level.Enabled(zapcore.DebugLevel))
	SetMode("production")
	assert.False(t, level.Enabled(zapcore.DebugLevel))
	assert.True(t, level.Enabled(zapcore.InfoLevel))

	t.Setenv(constants.EnvDebug, "1")
	SetMode("production")
	assert.True(t, level.Enabled(zapcore.DebugLevel), "env keeps debug on")
}

func TestSetInternalOutputNilRestoresLevel(t *testing.T) {
	t.Setenv(constants.EnvDebug, "")
	SetMode("production")
	SetInternalOutput(nil)
	assert.False(t, logger().Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestLoggerWriter(t *testing.T) {
	var lines []string
	w := &LoggerWriter{
		Fn:     func(format string, v ...any) { lines = append(lines, fmt.Sprintf(format, v...)) },
		Prefix: "[nats] ",
	}
	n, err := w.Write([]byte("one\n\n  \ntwo\n"))
	require.NoError(t, err)
	assert.Equal(t, len("one\n\n  \ntwo\n"), n)
	assert.Equal(t, []string{"[nats] one", "[nats] two"}, lines)
}

func TestRequestIDContext(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithRequestID(context.Background(), "req-42")
	id, ok := RequestIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-42", id)

	buf := captureInternal(t)
	InfoCtx(ctx, "render stored", "notation", "mermaid")
	WarnCtx(ctx, "slow render")
	ErrorCtx(ctx, "render failed")
	DebugCtx(ctx, "style lookup")
	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "req-42"))
	assert.Contains(t, out, "mermaid")
}

func TestNilLoggerIsSafe(t *testing.T) {
	saved := logger()
	internal = nil
	defer func() { internal = saved }()

	Info("ignored")
	Warn("ignored")
	Error("ignored")
	Debug("ignored")
	InfoCtx(context.Background(), "ignored")
	assert.Error(t, Errorf("still returned"))
}
