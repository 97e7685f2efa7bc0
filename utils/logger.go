package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/awantoch/flowviz/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Diagrams and command results are user output and go to stdout unadorned.
// Everything else is internal and goes through zap to stderr.
var (
	outMu    sync.RWMutex
	user     = log.New(os.Stdout, "", 0)
	internal *zap.SugaredLogger
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

func init() {
	if os.Getenv(constants.EnvDebug) != "" {
		level.SetLevel(zapcore.DebugLevel)
	}
	internal = newInternal(zapcore.Lock(os.Stderr), level)
}

func newInternal(w zapcore.WriteSyncer, enab zapcore.LevelEnabler) *zap.SugaredLogger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), w, enab)).Sugar()
}

func logger() *zap.SugaredLogger {
	outMu.RLock()
	defer outMu.RUnlock()
	return internal
}

func logf(lvl zapcore.Level, format string, v ...any) {
	if l := logger(); l != nil {
		l.Logf(lvl, format, v...)
	}
}

// User prints to user output.
func User(format string, v ...any) {
	outMu.RLock()
	u := user
	outMu.RUnlock()
	u.Printf(format, v...)
}

func Info(format string, v ...any)  { logf(zapcore.InfoLevel, format, v...) }
func Warn(format string, v ...any)  { logf(zapcore.WarnLevel, format, v...) }
func Error(format string, v ...any) { logf(zapcore.ErrorLevel, format, v...) }
func Debug(format string, v ...any) { logf(zapcore.DebugLevel, format, v...) }

// SetUserOutput redirects user output. nil restores stdout.
func SetUserOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	outMu.Lock()
	user = log.New(w, "", 0)
	outMu.Unlock()
}

// SetInternalOutput sends internal logs of every level to w. nil restores
// stderr at the current mode's level.
func SetInternalOutput(w io.Writer) {
	l := newInternal(zapcore.Lock(os.Stderr), level)
	if w != nil {
		l = newInternal(zapcore.AddSync(w), zapcore.DebugLevel)
	}
	outMu.Lock()
	internal = l
	outMu.Unlock()
}

// SetMode switches between "debug" and the default info level.
// FLOWVIZ_DEBUG keeps debug on regardless.
func SetMode(mode string) {
	if mode == "debug" || os.Getenv(constants.EnvDebug) != "" {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// Errorf logs the error message and returns it as an error value.
func Errorf(format string, v ...any) error {
	err := fmt.Errorf(format, v...)
	if l := logger(); l != nil {
		l.Error(err.Error())
	}
	return err
}

// Componentf logs a component-tagged error and returns it unchanged, so
// callers can still match it with errors.Is/As.
func Componentf(component string, err error) error {
	if l := logger(); err != nil && l != nil {
		l.Errorw(err.Error(), "component", component)
	}
	return err
}

// LoggerWriter adapts a log function to io.Writer, one call per non-blank line.
type LoggerWriter struct {
	Fn     func(string, ...any)
	Prefix string
}

func (w *LoggerWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		w.Fn("%s%s", w.Prefix, line)
	}
	return len(p), nil
}

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// RequestIDFromContext extracts the request ID from context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(requestIDKey).(string)
	return s, ok
}

// logw appends request_id from ctx to the structured fields.
func logw(ctx context.Context, lvl zapcore.Level, msg string, fields []any) {
	l := logger()
	if l == nil {
		return
	}
	if reqID, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", reqID)
	}
	l.Logw(lvl, msg, fields...)
}

func InfoCtx(ctx context.Context, msg string, fields ...any) {
	logw(ctx, zapcore.InfoLevel, msg, fields)
}

func WarnCtx(ctx context.Context, msg string, fields ...any) {
	logw(ctx, zapcore.WarnLevel, msg, fields)
}

func ErrorCtx(ctx context.Context, msg string, fields ...any) {
	logw(ctx, zapcore.ErrorLevel, msg, fields)
}

func DebugCtx(ctx context.Context, msg string, fields ...any) {
	logw(ctx, zapcore.DebugLevel, msg, fields)
}
