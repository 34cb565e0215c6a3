package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides mirrors the settings that may come from the process environment.
// Zero values mean "not set" and leave the YAML/default value in place.
type envOverrides struct {
	Port           int           `env:"PORT"`
	Env            string        `env:"APP_ENV"`
	BackendURL     string        `env:"SUMMARIZER_BACKEND_URL"`
	BackendTimeout time.Duration `env:"SUMMARIZER_BACKEND_TIMEOUT"`
	ProxyEndpoint  string        `env:"PROXY_ENDPOINT"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogDir         string        `env:"LOG_DIR"`
	RedisURL       string        `env:"REDIS_URL"`
	RateLimit      *int          `env:"RATE_LIMIT_PER_MINUTE"`
	ProcessTitle   string        `env:"PROCESS_TITLE"`
}

func applyEnvOverrides(cfg *AppConfig, environ map[string]string) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if o.Port != 0 {
		cfg.Port = o.Port
	}
	if v := strings.TrimSpace(o.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(o.BackendURL); v != "" {
		cfg.Backend.URL = v
	}
	if o.BackendTimeout != 0 {
		cfg.Backend.Timeout = o.BackendTimeout
	}
	if v := strings.TrimSpace(o.ProxyEndpoint); v != "" {
		cfg.ProxyEndpoint = v
	}
	if len(o.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = o.AllowedOrigins
	}
	if v := strings.TrimSpace(o.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(o.RedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if o.RateLimit != nil {
		cfg.RateLimit.PerMinute = *o.RateLimit
	}
	if v := strings.TrimSpace(o.ProcessTitle); v != "" {
		cfg.ProcessTitle = v
	}
	return nil
}

// LoadDotenv loads KEY=VALUE pairs from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotenv(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultDotenvPath
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}

// Environ returns the current process environment as a map.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}
