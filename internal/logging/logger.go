// Package logging provides structured logging for Scholaris Core.
// It keeps a process-wide logger, initialized once, backed by zap.
package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents a log level.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// LogFormat selects the output encoder.
type LogFormat string

const (
	FormatJSON    LogFormat = "JSON"
	FormatConsole LogFormat = "CONSOLE"
)

// Logger wraps a zap sugared logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	global *Logger
	once   sync.Once
)

// zapLevel converts a LogLevel to zapcore.Level. Unknown levels fall
// back to info.
func zapLevel(level LogLevel) zapcore.Level {
	switch LogLevel(strings.ToUpper(string(level))) {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// Init initializes the global logger. Subsequent calls are ignored.
func Init(minLevel LogLevel, format LogFormat) {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel(minLevel))
		cfg.DisableStacktrace = true
		if format == FormatConsole {
			cfg.Encoding = "console"
			cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		}

		z, err := cfg.Build(zap.AddCallerSkip(2))
		if err != nil {
			// Fall back to a no-op logger rather than failing startup
			z = zap.NewNop()
		}
		global = &Logger{sugar: z.Sugar()}
	})
}

// Get returns the global logger instance.
func Get() *Logger {
	if global == nil {
		Init(LevelInfo, FormatJSON)
	}
	return global
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// fields flattens context maps into zap key-value pairs.
func fields(context ...map[string]interface{}) []interface{} {
	var kvs []interface{}
	for _, c := range context {
		for k, v := range c {
			kvs = append(kvs, k, v)
		}
	}
	return kvs
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.sugar.Debugw(message, fields(context...)...)
}

// Info logs an info message.
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.sugar.Infow(message, fields(context...)...)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.sugar.Warnw(message, fields(context...)...)
}

// Error logs an error message.
func (l *Logger) Error(message string, err error, context ...map[string]interface{}) {
	kvs := fields(context...)
	if err != nil {
		kvs = append(kvs, "error", err.Error())
	}
	l.sugar.Errorw(message, kvs...)
}

// ErrorWithCode logs an error message tagged with a stable error code.
func (l *Logger) ErrorWithCode(message string, code string, err error, context ...map[string]interface{}) {
	kvs := fields(context...)
	kvs = append(kvs, "code", code)
	if err != nil {
		kvs = append(kvs, "error", err.Error())
	}
	l.sugar.Errorw(message, kvs...)
}

// Convenience functions using the global logger

func Debug(message string, context ...map[string]interface{}) {
	Get().Debug(message, context...)
}

func Info(message string, context ...map[string]interface{}) {
	Get().Info(message, context...)
}

func Warn(message string, context ...map[string]interface{}) {
	Get().Warn(message, context...)
}

func Error(message string, err error, context ...map[string]interface{}) {
	Get().Error(message, err, context...)
}

func ErrorWithCode(message string, code string, err error, context ...map[string]interface{}) {
	Get().ErrorWithCode(message, code, err, context...)
}
