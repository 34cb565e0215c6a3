package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int
	Env            string
	Backend        BackendConfig
	ProxyEndpoint  string // where the page handler posts form submissions
	AllowedOrigins []string
	Paths          RuntimePathsConfig
	Redis          RedisRuntimeConfig
	RateLimit      RateLimitConfig
	ProcessTitle   string
}

// BackendConfig describes the external summarization service.
type BackendConfig struct {
	URL     string
	Timeout time.Duration // 0 leaves the transport default (no timeout)
}

type RuntimePathsConfig struct {
	Logs string
}

type RedisRuntimeConfig struct {
	URL string
}

// RateLimitConfig applies only when Redis is configured.
type RateLimitConfig struct {
	PerMinute int
}

type rawAppConfig struct {
	Port               int                `yaml:"port"`
	Env                string             `yaml:"env"`
	AppEnv             string             `yaml:"app_env"`
	Backend            rawBackendConfig   `yaml:"backend"`
	BackendURL         string             `yaml:"backend_url"`
	SummarizerURL      string             `yaml:"summarizer_backend_url"`
	ProxyEndpoint      string             `yaml:"proxy_endpoint"`
	AllowedOrigins     []string           `yaml:"allowed_origins"`
	CORSAllowedOrigins []string           `yaml:"cors_allowed_origins"`
	Paths              rawPathsConfig     `yaml:"paths"`
	LogDir             string             `yaml:"log_dir"`
	Redis              rawRedisConfig     `yaml:"redis"`
	RedisURL           string             `yaml:"redis_url"`
	RateLimit          rawRateLimitConfig `yaml:"rate_limit"`
	ProcessTitle       string             `yaml:"process_title"`
}

type rawBackendConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawRedisConfig struct {
	URL string `yaml:"url"`
}

type rawRateLimitConfig struct {
	PerMinute *int `yaml:"per_minute"`
}

// Load reads the YAML file at configPath, then applies environment overrides from
// environ (typically env.ToMap(os.Environ())). A missing file at the default path
// falls back to defaults.
func Load(configPath string, environ map[string]string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		if err := applyRawAppConfig(&cfg, raw); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigPath:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := applyEnvOverrides(&cfg, environ); err != nil {
		return nil, err
	}
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:         defaultPort,
		Env:          defaultEnv,
		ProcessTitle: defaultProcessTitle,
		RateLimit:    RateLimitConfig{PerMinute: defaultRateLimit},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.AppEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Backend.URL); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(raw.BackendURL); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(raw.SummarizerURL); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(raw.Backend.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid backend.timeout %q: %w", v, err)
		}
		cfg.Backend.Timeout = d
	}
	if v := strings.TrimSpace(raw.ProxyEndpoint); v != "" {
		cfg.ProxyEndpoint = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.Redis.URL = v
	}
	if raw.RateLimit.PerMinute != nil {
		cfg.RateLimit.PerMinute = *raw.RateLimit.PerMinute
	}
	if v := strings.TrimSpace(raw.ProcessTitle); v != "" {
		cfg.ProcessTitle = v
	}
	return nil
}

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Backend.URL = strings.TrimRight(strings.TrimSpace(cfg.Backend.URL), "/")
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Paths.Logs = strings.TrimSpace(cfg.Paths.Logs)
	if strings.TrimSpace(cfg.ProxyEndpoint) == "" {
		cfg.ProxyEndpoint = fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Port, SummarizePath)
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.Backend.Timeout < 0 {
		return fmt.Errorf("invalid backend timeout %s, expected >= 0", cfg.Backend.Timeout)
	}
	if cfg.RateLimit.PerMinute < 0 {
		return fmt.Errorf("invalid rate_limit.per_minute %d, expected >= 0", cfg.RateLimit.PerMinute)
	}
	if cfg.Backend.URL != "" {
		if err := validateHTTPURL(cfg.Backend.URL); err != nil {
			return fmt.Errorf("invalid backend url: %w", err)
		}
	}
	if err := validateHTTPURL(cfg.ProxyEndpoint); err != nil {
		return fmt.Errorf("invalid proxy endpoint: %w", err)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := neturl.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: expected http or https scheme", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// Addr returns the listen address.
func (c *AppConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// BackendConfigured reports whether the summarization backend URL is set.
func (c *AppConfig) BackendConfigured() bool {
	return c != nil && c.Backend.URL != ""
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// RateLimitEnabled reports whether the Redis-backed limiter should be installed.
func (c *AppConfig) RateLimitEnabled() bool {
	return c != nil && c.Redis.URL != "" && c.RateLimit.PerMinute > 0
}
