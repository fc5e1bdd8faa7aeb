// Package logging is a thin, leveled structured-logging wrapper around
// zap, adapted from the teacher's logging package API shape (Logger with
// *w key/value methods, NewLogger/NewTestLogger constructors) generalized
// from its production multi-appender/net-appender machinery down to the
// single-process concern this repo actually has: console logging during
// compilation and simulation.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled, structured logging surface every package in this
// repo takes as a dependency instead of reaching for the global logger --
// mirrors the teacher's logging.Logger interface.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Fatalw(msg string, keysAndValues ...interface{})
	Named(name string) Logger
}

type impl struct {
	sugar *zap.SugaredLogger
}

// NewLogger returns a production logger writing leveled, structured JSON
// to stderr, the teacher's default production config.
func NewLogger(name string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &impl{sugar: base.Named(name).Sugar()}
}

// NewTestLogger returns a logger that writes through t.Log, matching the
// teacher's logging.NewTestLogger(t) used throughout its test suite.
func NewTestLogger(t testing.TB) Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(testWriter{t}),
		zapcore.DebugLevel,
	)
	return &impl{sugar: zap.New(core).Sugar()}
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Logf("%s", p)
	return len(p), nil
}

func (l *impl) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *impl) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *impl) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *impl) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }
func (l *impl) Fatalw(msg string, kv ...interface{}) { l.sugar.Fatalw(msg, kv...) }
func (l *impl) Named(name string) Logger {
	return &impl{sugar: l.sugar.Named(name)}
}
