package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Logger is a named sugared logger. It satisfies the server middleware Logger interface.
type Logger struct {
	*zap.SugaredLogger
}

var (
	mu   sync.RWMutex
	base *zap.Logger = zap.NewNop()
)

// Init replaces the root logger. format is "json" or "console".
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	conf := zap.NewProductionConfig()
	if format == "console" {
		conf = zap.NewDevelopmentConfig()
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	conf.EncoderConfig.TimeKey = "ts"
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	base = l
	mu.Unlock()
	return nil
}

// Named returns a child of the root logger.
func Named(name string) (*Logger, error) {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &Logger{SugaredLogger: base.Named(name).Sugar()}, nil
}

func MustNamed(name string) *Logger {
	l, err := Named(name)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Logger) Unwrap() *zap.SugaredLogger {
	return l.SugaredLogger
}

// S returns the root sugared logger.
func S() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sugar()
}

// Reflect wraps a value so it is encoded by reflection.
func Reflect(key string, value any) zap.Field {
	return zap.Reflect(key, value)
}

// Sync flushes the root logger.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}
