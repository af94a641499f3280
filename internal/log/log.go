package log

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Options controls how the global logger is built.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is "console" (human readable, coloured levels) or "json".
	Format string
}

var (
	mu     sync.RWMutex
	sugar  *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	inited sync.Once
)

// initLogger builds a console logger on stderr the first time a log call is
// made without Setup having been called.
func initLogger() {
	inited.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if sugar != nil {
			return
		}
		l, err := build(Options{})
		if err != nil {
			l = zap.NewNop()
		}
		sugar = l.Sugar()
	})
}

// Setup replaces the global logger according to opts.
func Setup(opts Options) error {
	l, err := build(opts)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger installs an already constructed zap logger (tests use zap.NewNop
// or an observer core).
func SetLogger(l *zap.Logger) {
	inited.Do(func() {})
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// SetLevel changes the minimum level of the logger built by Setup.
func SetLevel(l Level) error {
	lvl, err := zapcore.ParseLevel(string(l))
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", l)
	}
	level.SetLevel(lvl)
	return nil
}

func build(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
		}
		level.SetLevel(lvl)
	}
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l, nil
}

func current() *zap.SugaredLogger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warnw(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{zap.Error(err)}, kv...)
	current().Errorw(msg, extended...)
}

// Sync flushes buffered log entries. Call before exiting.
func Sync() {
	_ = current().Sync()
}
