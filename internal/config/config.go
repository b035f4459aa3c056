package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis (oauth state + rate limiting)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// whoop
	WhoopApiURL       string `toml:"whoop_api_url"`
	WhoopAuthURL      string `toml:"whoop_auth_url"`
	WhoopTokenURL     string `toml:"whoop_token_url"`
	WhoopPageLimit    int    `toml:"whoop_page_limit"`
	WhoopMaxPages     int    `toml:"whoop_max_pages"`
	DefaultRangeDays  int    `toml:"default_range_days"`
	MaxRangeDays      int    `toml:"max_range_days"`
	SecureCookies     bool   `toml:"secure_cookies"`
	MetricsRatePerMin int    `toml:"metrics_rate_per_min"`

	// serve generated data on the heatmap route when there is no whoop session
	MockFallback bool `toml:"mock_fallback"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

// Secrets are never kept in the TOML file, only in the environment.
type Secrets struct {
	WhoopClientID     string `env:"WHOOP_CLIENT_ID"`
	WhoopClientSecret string `env:"WHOOP_CLIENT_SECRET"`
	WhoopRedirectURI  string `env:"WHOOP_REDIRECT_URI" envDefault:"http://localhost:9000/auth/whoop/callback"`
	SentryDSN         string `env:"SENTRY_DSN"`
	RedisPassword     string `env:"REDIS_PASS"`
	HoneycombEnabled  bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
	HoneycombApiKey   string `env:"HONEYCOMB_API_KEY"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found", env)
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()

	return cfg, nil
}

func Load(env, path string) (*Config, error) {
	tomlBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(env, string(tomlBytes))
}

func Parse(env, tomlContent string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(tomlContent, &t); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	return t.Get(env)
}

func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &s, nil
}

// Missing lists the secrets the service can start without, but that will disable something.
func (s *Secrets) Missing() error {
	var errs []error
	if s.WhoopClientID == "" {
		errs = append(errs, errors.New("WHOOP_CLIENT_ID not set, whoop login disabled"))
	}
	if s.WhoopClientSecret == "" {
		errs = append(errs, errors.New("WHOOP_CLIENT_SECRET not set, whoop login disabled"))
	}
	if s.RedisPassword == "" {
		errs = append(errs, errors.New("REDIS_PASS not set"))
	}
	if s.HoneycombEnabled && s.HoneycombApiKey == "" {
		errs = append(errs, errors.New("HONEYCOMB_API_KEY not set"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.WhoopApiURL == "" {
		c.WhoopApiURL = "https://api.prod.whoop.com/developer"
	}
	if c.WhoopAuthURL == "" {
		c.WhoopAuthURL = "https://api.prod.whoop.com/oauth/oauth2/auth"
	}
	if c.WhoopTokenURL == "" {
		c.WhoopTokenURL = "https://api.prod.whoop.com/oauth/oauth2/token"
	}
	if c.WhoopPageLimit <= 0 {
		c.WhoopPageLimit = 25
	}
	if c.WhoopMaxPages <= 0 {
		c.WhoopMaxPages = 10
	}
	if c.DefaultRangeDays <= 0 {
		c.DefaultRangeDays = 180
	}
	if c.MaxRangeDays <= 0 {
		c.MaxRangeDays = 730
	}
	if c.MetricsRatePerMin <= 0 {
		c.MetricsRatePerMin = 30
	}
}
