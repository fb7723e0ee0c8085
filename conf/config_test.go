package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Host    string        `mapstructure:"host"`
		Port    int           `mapstructure:"port"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"server"`
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server:\n  host: localhost\n  port: 8080\n  timeout: 30s\n")

	var cfg testConfig
	if err := NewLoader(dir, "config", "yaml").Load(&cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Fatalf("duration hook not applied: %v", cfg.Server.Timeout)
	}
}

func TestEnvPlaceholderExpansion(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server:\n  host: ${FT_TEST_HOST:-fallback}\n  port: 9090\n")

	var cfg testConfig
	if err := NewLoader(dir, "config", "yaml").Load(&cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "fallback" {
		t.Fatalf("expected default, got %q", cfg.Server.Host)
	}

	t.Setenv("FT_TEST_HOST", "db.internal")
	if err := NewLoader(dir, "config", "yaml").Load(&cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "db.internal" {
		t.Fatalf("expected env value, got %q", cfg.Server.Host)
	}
}

func TestMissingConfigFileIsNotFatal(t *testing.T) {
	var cfg testConfig
	if err := NewLoader(t.TempDir(), "config", "yaml").Load(&cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}
