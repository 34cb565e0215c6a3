package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenDefaultFileMissing(t *testing.T) {
	cfg, err := Load(DefaultConfigPath, map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %d, got %d", defaultPort, cfg.Port)
	}
	if cfg.BackendConfigured() {
		t.Fatalf("expected backend to be unconfigured by default")
	}
	if cfg.ProxyEndpoint != "http://127.0.0.1:3000/api/summarize" {
		t.Fatalf("unexpected proxy endpoint: %q", cfg.ProxyEndpoint)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"), map[string]string{})
	if err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: production
backend:
  url: http://localhost:5000/
  timeout: 45s
allowed_origins: [" example.com ", "", "*.example.org"]
paths:
  logs: /var/log/transcript
redis:
  url: redis://localhost:6379/0
rate_limit:
  per_minute: 5
`)
	cfg, err := Load(path, map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 || cfg.IsDev() {
		t.Fatalf("unexpected port/env: %d %q", cfg.Port, cfg.Env)
	}
	if cfg.Backend.URL != "http://localhost:5000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 45*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Backend.Timeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "example.com" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
	if cfg.LogDir() != "/var/log/transcript" {
		t.Fatalf("unexpected log dir: %q", cfg.LogDir())
	}
	if !cfg.RateLimitEnabled() || cfg.RateLimit.PerMinute != 5 {
		t.Fatalf("expected rate limit enabled with 5/min, got %+v", cfg.RateLimit)
	}
	if cfg.ProxyEndpoint != "http://127.0.0.1:8080/api/summarize" {
		t.Fatalf("proxy endpoint should follow port, got %q", cfg.ProxyEndpoint)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "prot: 1\n")
	if _, err := Load(path, map[string]string{}); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	if _, err := Load(path, map[string]string{}); err != nil {
		t.Fatalf("empty config should load defaults, got %v", err)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "backend:\n  url: http://yaml-backend:5000\n")
	cfg, err := Load(path, map[string]string{
		"PORT":                       "9000",
		BackendURLEnv:                "http://env-backend:5000",
		"SUMMARIZER_BACKEND_TIMEOUT": "2m",
		"ALLOWED_ORIGINS":            "a.example.com,b.example.com",
		"RATE_LIMIT_PER_MINUTE":      "0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected env port, got %d", cfg.Port)
	}
	if cfg.Backend.URL != "http://env-backend:5000" {
		t.Fatalf("expected env backend url, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 2*time.Minute {
		t.Fatalf("unexpected timeout: %s", cfg.Backend.Timeout)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
	if cfg.RateLimit.PerMinute != 0 {
		t.Fatalf("expected explicit zero rate limit, got %d", cfg.RateLimit.PerMinute)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		environ map[string]string
		wantErr string
	}{
		{"bad port", "port: 70000\n", nil, "invalid port"},
		{"bad scheme", "backend:\n  url: ftp://host\n", nil, "invalid backend url"},
		{"missing host", "", map[string]string{BackendURLEnv: "http://"}, "missing host"},
		{"bad timeout", "backend:\n  timeout: soon\n", nil, "invalid backend.timeout"},
		{"negative rate", "rate_limit:\n  per_minute: -1\n", nil, "rate_limit"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			environ := test.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := Load(writeConfig(t, test.yaml), environ)
			if err == nil {
				t.Fatalf("expected error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	loaded, err := LoadDotenv(filepath.Join(t.TempDir(), ".env"))
	if err != nil || loaded {
		t.Fatalf("missing .env should be skipped, got loaded=%v err=%v", loaded, err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TRANSCRIPT_DOTENV_TEST=from-file\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TRANSCRIPT_DOTENV_TEST") })

	loaded, err = LoadDotenv(path)
	if err != nil || !loaded {
		t.Fatalf("expected .env to load, got loaded=%v err=%v", loaded, err)
	}
	if got := os.Getenv("TRANSCRIPT_DOTENV_TEST"); got != "from-file" {
		t.Fatalf("unexpected env value %q", got)
	}
}
