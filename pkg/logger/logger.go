// Package logger provides context-scoped structured logging for the delegator.
//
// Dynamic fields (request IDs, trace IDs, error details) travel in the
// context.Context and are attached to every log entry written with that
// context. The backend is zap.
package logger

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables for logger configuration
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvLogOutput = "LOG_OUTPUT"
)

// Logger is the logging interface used throughout the delegator.
// All methods take a context; dynamic fields stored in it via WithLogField
// and friends are included in the entry.
type Logger interface {
	Debug(ctx context.Context, msg string)
	Debugf(ctx context.Context, format string, args ...interface{})
	Info(ctx context.Context, msg string)
	Infof(ctx context.Context, format string, args ...interface{})
	Warn(ctx context.Context, msg string)
	Warnf(ctx context.Context, format string, args ...interface{})
	Error(ctx context.Context, msg string)
	Errorf(ctx context.Context, format string, args ...interface{})
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, error
	Level string
	// Format is the encoding: json or text
	Format string
	// Output is the destination: stdout or stderr
	Output string
	// Component is the component name attached to every entry
	Component string
	// Version is the build version attached to every entry
	Version string
}

// ConfigFromEnv builds a Config from LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT,
// falling back to info/json/stdout.
func ConfigFromEnv() Config {
	cfg := Config{
		Level:  os.Getenv(EnvLogLevel),
		Format: os.Getenv(EnvLogFormat),
		Output: os.Getenv(EnvLogOutput),
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
	return cfg
}

type zapLogger struct {
	base *zap.Logger
}

// NewLogger creates a Logger from the given configuration.
func NewLogger(cfg Config) (Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "message"

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "text", "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q (supported: json, text)", cfg.Format)
	}

	var sink zapcore.WriteSyncer
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		sink = zapcore.Lock(os.Stdout)
	case "stderr":
		sink = zapcore.Lock(os.Stderr)
	default:
		return nil, fmt.Errorf("invalid log output %q (supported: stdout, stderr)", cfg.Output)
	}

	core := zapcore.NewCore(encoder, sink, level)

	static := []zap.Field{}
	if cfg.Component != "" {
		static = append(static, zap.String(ComponentKey, cfg.Component))
	}
	if cfg.Version != "" {
		static = append(static, zap.String(VersionKey, cfg.Version))
	}
	if hostname, err := os.Hostname(); err == nil {
		static = append(static, zap.String(HostnameKey, hostname))
	}

	return &zapLogger{base: zap.New(core).With(static...)}, nil
}

// NewTestLogger returns a Logger that discards all output. Intended for tests.
func NewTestLogger() Logger {
	return &zapLogger{base: zap.NewNop()}
}

// contextFields extracts the dynamic fields from the context in a stable order.
func contextFields(ctx context.Context) []zap.Field {
	dynamic := GetLogFields(ctx)
	if len(dynamic) == 0 {
		return nil
	}
	keys := make([]string, 0, len(dynamic))
	for k := range dynamic {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, dynamic[k]))
	}
	return fields
}

func (l *zapLogger) Debug(ctx context.Context, msg string) {
	l.base.Debug(msg, contextFields(ctx)...)
}

func (l *zapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.base.Debug(fmt.Sprintf(format, args...), contextFields(ctx)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string) {
	l.base.Info(msg, contextFields(ctx)...)
}

func (l *zapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.base.Info(fmt.Sprintf(format, args...), contextFields(ctx)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string) {
	l.base.Warn(msg, contextFields(ctx)...)
}

func (l *zapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.base.Warn(fmt.Sprintf(format, args...), contextFields(ctx)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string) {
	l.base.Error(msg, contextFields(ctx)...)
}

func (l *zapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.base.Error(fmt.Sprintf(format, args...), contextFields(ctx)...)
}
