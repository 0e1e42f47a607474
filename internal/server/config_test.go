package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finantah/credit-simulator/internal/remote"
	"github.com/finantah/credit-simulator/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address == "" {
		t.Fatalf("expected default address, got empty")
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default max body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Fatalf("expected default cache ttl, got %s", cfg.CacheTTL())
	}
	if cfg.RateLimit.PerSecond != constants.DefaultRateLimitPerSecond || cfg.RateLimit.Burst != constants.DefaultRateLimitBurst {
		t.Fatalf("expected default rate limit, got %+v", cfg.RateLimit)
	}
	if cfg.Remote.Enabled() {
		t.Fatalf("expected remote provider to be disabled by default")
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 128K
shutdownTimeout: 3s
policyFile: config.yaml
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
rateLimit:
  perSecond: 2
  burst: 4
cache:
  ttl: 30m
remote:
  provider: gemini
  timeout: 15s
  maxAttempts: 2
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 128*1024 {
		t.Fatalf("expected max body override, got %d", cfg.BodySizeBytes())
	}
	if cfg.ShutdownTimeoutDuration() != 3*time.Second {
		t.Fatalf("expected shutdown timeout override, got %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.CacheTTL() != 30*time.Minute {
		t.Fatalf("expected cache ttl override, got %s", cfg.CacheTTL())
	}
	if cfg.PolicyFile != "config.yaml" {
		t.Fatalf("expected policy file override, got %s", cfg.PolicyFile)
	}
	if cfg.RateLimit.PerSecond != 2 || cfg.RateLimit.Burst != 4 {
		t.Fatalf("expected rate limit override, got %+v", cfg.RateLimit)
	}
	if cfg.Remote.Provider != remote.ProviderGemini || cfg.Remote.Timeout != "15s" || cfg.Remote.MaxAttempts != 2 {
		t.Fatalf("expected remote override, got %+v", cfg.Remote)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"size":     "maxBodySize: invalid",
		"yaml":     "address: [",
		"duration": "shutdownTimeout: soon",
		"ttl":      "cache:\n  ttl: -1h",
		"rate":     "rateLimit:\n  perSecond: -1",
		"provider": "remote:\n  provider: openai",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestSetBodySizeBytes(t *testing.T) {
	cfg, _ := LoadConfig("")
	cfg.SetBodySizeBytes(0)
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Errorf("non-positive size should be ignored, got %d", cfg.BodySizeBytes())
	}
	cfg.SetBodySizeBytes(1024)
	if cfg.BodySizeBytes() != 1024 || cfg.MaxBodySize != "1024" {
		t.Errorf("expected 1024, got %d (%s)", cfg.BodySizeBytes(), cfg.MaxBodySize)
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("GEMINI_API_KEY", "gm")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	secrets, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets() error = %v", err)
	}

	if secrets.RedisAddr != "localhost:6379" || secrets.RedisDB != 2 {
		t.Errorf("unexpected redis secrets %+v", secrets)
	}
	keys := secrets.APIKeys()
	if keys.Anthropic != "sk-ant" || keys.Gemini != "gm" {
		t.Errorf("unexpected api keys %+v", keys)
	}

	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := LoadSecrets(); err == nil {
		t.Error("expected error for malformed REDIS_DB")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":      constants.DefaultMaxBodySizeBytes,
		"512":   512,
		"512B":  512,
		"64K":   64 * 1024,
		"64kb":  64 * 1024,
		"2M":    2 * 1024 * 1024,
		" 1MB ": 1024 * 1024,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Errorf("ParseSize(%q) error = %v", input, err)
			continue
		}
		if got != expected {
			t.Errorf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, input := range []string{"abc", "10X", "1G"} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) expected error", input)
		}
	}
}

func TestLoadExampleServerConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "server-config.yaml.example"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.PolicyFile != constants.DefaultConfigFile {
		t.Errorf("expected policy file %s, got %s", constants.DefaultConfigFile, cfg.PolicyFile)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Errorf("expected default body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.Remote.Provider != remote.ProviderClaude {
		t.Errorf("expected claude provider, got %q", cfg.Remote.Provider)
	}
	if cfg.Cache.Disabled {
		t.Errorf("expected cache enabled")
	}
}
