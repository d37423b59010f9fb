// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	Namespace      string        `yaml:"namespace"` // route prefix, e.g. /learnpress/v1
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`

	// BehindProxy trusts X-Forwarded-For / X-Real-IP for the client address.
	// Leave it off unless a reverse proxy overwrites those headers.
	BehindProxy bool `yaml:"behind_proxy"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StoreConfig struct {
	Driver       string        `yaml:"driver"` // mysql | postgres
	DSN          string        `yaml:"dsn"`
	TablePrefix  string        `yaml:"table_prefix"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

type SiteConfig struct {
	URL           string `yaml:"url"`
	UploadBaseURL string `yaml:"upload_base_url"` // empty disables certificate file URLs
	CourseBase    string `yaml:"course_base"`
	Locale        string `yaml:"locale"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	Leeway    time.Duration `yaml:"leeway"`
}

// MembershipConfig points at the subscription service. An empty BaseURL means
// the service is not installed and subscription routes answer 503.
type MembershipConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

func (m MembershipConfig) Enabled() bool { return strings.TrimSpace(m.BaseURL) != "" }

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	VerifyPerMinute int `yaml:"verify_per_minute"` // 0 disables limiting
}

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Site       SiteConfig       `yaml:"site"`
	Auth       AuthConfig       `yaml:"auth"`
	Membership MembershipConfig `yaml:"membership"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

var tablePrefixRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// LoadConfig reads the YAML file at path. ${VAR} references are expanded from
// the environment before parsing so secrets can stay out of the file.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse decodes, defaults and validates a configuration document.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.Namespace == "" {
		cfg.HTTP.Namespace = "/learnpress/v1"
	}
	cfg.HTTP.Namespace = "/" + strings.Trim(cfg.HTTP.Namespace, "/")
	cfg.HTTP.RequestTimeout = orDefault(cfg.HTTP.RequestTimeout, 10*time.Second)
	cfg.HTTP.ReadTimeout = orDefault(cfg.HTTP.ReadTimeout, 5*time.Second)
	cfg.HTTP.WriteTimeout = orDefault(cfg.HTTP.WriteTimeout, 15*time.Second)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "mysql"
	}
	if cfg.Store.TablePrefix == "" {
		cfg.Store.TablePrefix = "wp_"
	}
	cfg.Store.QueryTimeout = orDefault(cfg.Store.QueryTimeout, 5*time.Second)
	if cfg.Store.MaxOpenConns <= 0 {
		cfg.Store.MaxOpenConns = 10
	}

	cfg.Site.URL = strings.TrimRight(cfg.Site.URL, "/")
	cfg.Site.UploadBaseURL = strings.TrimRight(cfg.Site.UploadBaseURL, "/")
	if cfg.Site.CourseBase == "" {
		cfg.Site.CourseBase = "courses"
	}
	if cfg.Site.Locale == "" {
		cfg.Site.Locale = "en"
	}

	cfg.Auth.Leeway = orDefault(cfg.Auth.Leeway, 30*time.Second)
	cfg.Membership.Timeout = orDefault(cfg.Membership.Timeout, 10*time.Second)
}

func (cfg *Config) validate() error {
	switch cfg.Store.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("store.driver %q is not supported (mysql|postgres)", cfg.Store.Driver)
	}
	if cfg.Store.DSN == "" {
		return errors.New("store.dsn is required")
	}
	if !tablePrefixRe.MatchString(cfg.Store.TablePrefix) {
		return fmt.Errorf("store.table_prefix %q must match %s", cfg.Store.TablePrefix, tablePrefixRe)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if cfg.RateLimit.VerifyPerMinute < 0 {
		return errors.New("rate_limit.verify_per_minute must not be negative")
	}
	return nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
