package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelStrings = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel accepts DEBUG, INFO, WARN or ERROR in any case
func ParseLevel(s string) (LogLevel, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for level, name := range levelStrings {
		if name == up {
			return level, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger provides structured logging with a message and a key/value context.
// Output is JSON produced by zap.
type Logger struct {
	level zap.AtomicLevel
	base  *zap.Logger
}

// NewLogger creates a logger writing production JSON to stderr
func NewLogger(minLevel LogLevel) *Logger {
	level := zap.NewAtomicLevelAt(minLevel.zapLevel())

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	// Skip: log -> Debug/Info/Warn/Error -> actual caller
	base, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{level: level, base: base}
}

// NewWithCore wraps an existing zap core, mainly for tests
func NewWithCore(core zapcore.Core, minLevel LogLevel) *Logger {
	level := zap.NewAtomicLevelAt(minLevel.zapLevel())
	filtered, err := zapcore.NewIncreaseLevelCore(core, level)
	if err != nil {
		filtered = core
	}
	return &Logger{level: level, base: zap.New(filtered, zap.AddCaller(), zap.AddCallerSkip(2))}
}

// defaultLogger is swapped atomically so SetDefault is safe while handlers log
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger(INFO))
}

// fields converts a context map into zap fields with a stable key order
func fields(context map[string]interface{}) []zap.Field {
	if len(context) == 0 {
		return nil
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := context[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, context[k]))
	}
	return out
}

func (l *Logger) log(level LogLevel, message string, context []map[string]interface{}) {
	var ctx map[string]interface{}
	if len(context) > 0 {
		ctx = context[0]
	}
	if ce := l.base.Check(level.zapLevel(), message); ce != nil {
		ce.Write(fields(ctx)...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.log(DEBUG, message, context)
}

// Info logs an info message
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.log(INFO, message, context)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.log(WARN, message, context)
}

// Error logs an error message
func (l *Logger) Error(message string, context ...map[string]interface{}) {
	l.log(ERROR, message, context)
}

// SetMinLevel changes the minimum level at runtime
func (l *Logger) SetMinLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// Package-level convenience functions using default logger

// Debug logs a debug message using the default logger
func Debug(message string, context ...map[string]interface{}) {
	defaultLogger.Load().log(DEBUG, message, context)
}

// Info logs an info message using the default logger
func Info(message string, context ...map[string]interface{}) {
	defaultLogger.Load().log(INFO, message, context)
}

// Warn logs a warning message using the default logger
func Warn(message string, context ...map[string]interface{}) {
	defaultLogger.Load().log(WARN, message, context)
}

// Error logs an error message using the default logger
func Error(message string, context ...map[string]interface{}) {
	defaultLogger.Load().log(ERROR, message, context)
}

// SetMinLevel sets the minimum log level for the default logger
func SetMinLevel(level LogLevel) {
	defaultLogger.Load().SetMinLevel(level)
}

// SetDefault replaces the default logger
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger.Load()
}

// Sync flushes the default logger
func Sync() error {
	return defaultLogger.Load().Sync()
}
