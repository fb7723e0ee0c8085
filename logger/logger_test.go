package logger

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewLoggerDefaults(t *testing.T) {
	log := NewLogger(Config{})
	if log == nil || log.Logger == nil {
		t.Fatalf("expected logger")
	}
	log.Info("hello")
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	log := NewLogger(Config{Level: "debug", Format: "console"})
	log.Debug("console output")
}

func TestNewLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := NewLogger(Config{
		Output: "file",
		File:   FileConfig{Path: path, MaxSizeMB: 1},
	})
	log.Info("to file")
	_ = log.Sync()
}

func TestWithContextRequestID(t *testing.T) {
	log := NewNop()
	ctx := WithRequestID(context.Background(), "req-123")
	enriched := log.WithContext(ctx)
	if enriched == nil {
		t.Fatalf("expected logger from context")
	}
	// No request id in a bare context falls back to the base logger.
	if log.WithContext(context.Background()) == nil {
		t.Fatalf("expected fallback logger")
	}
}
