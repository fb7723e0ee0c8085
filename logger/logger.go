package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

/* ========================================================================
 * Logger
 * ========================================================================
 * Structured logging on Uber Zap. JSON or console encoding, stdout or
 * rotating file output.
 * ======================================================================== */

// Config configures the logger.
type Config struct {
	Level  string     `yaml:"level"`  // debug, info, warn, error
	Format string     `yaml:"format"` // json, console
	Output string     `yaml:"output"` // stdout, file
	File   FileConfig `yaml:"file"`
}

// FileConfig configures rotating file output.
type FileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Logger wraps a zap.Logger.
type Logger struct {
	*zap.Logger
}

// NewLogger builds a logger from config.
func NewLogger(cfg Config) *Logger {
	level := zap.InfoLevel
	if cfg.Level != "" {
		_ = level.UnmarshalText([]byte(cfg.Level))
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var writer zapcore.WriteSyncer
	if cfg.Output == "file" && cfg.File.Path != "" {
		maxSize := cfg.File.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    maxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		})
	} else {
		writer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writer, level)

	logger := zap.New(core, zap.AddCaller())
	return &Logger{Logger: logger}
}

// NewNop returns a logger that discards everything. Useful in tests and
// as a fallback when no logger is injected.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithContext returns a logger enriched with request-scoped fields.
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.Logger
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		return l.Logger.With(zap.String("request_id", requestID))
	}
	return l.Logger
}

type requestIDKey struct{}

// WithRequestID stores a request id for WithContext to pick up.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
