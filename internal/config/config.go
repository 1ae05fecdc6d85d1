// Package config loads server settings from defaults, an optional .env
// file, an optional YAML file and CHECKIN_* environment variables, in
// that order of increasing precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Addr string    `yaml:"addr"`
	Env  string    `yaml:"env"` // development | production
	API  APIConfig `yaml:"api"`
	DB   DBConfig  `yaml:"db"`
	Log  LogConfig `yaml:"log"`

	CSRFKey       string `yaml:"csrf_key"` // 64 hex chars
	SlowRequestMs int    `yaml:"slow_request_ms"`
}

// APIConfig locates the attendance REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Prefix  string        `yaml:"prefix"`
	Timeout time.Duration `yaml:"timeout"`
}

// DBConfig locates the local session database.
type DBConfig struct {
	Path        string        `yaml:"path"`
	SlowQuery   time.Duration `yaml:"slow_query"`
	SweepPeriod time.Duration `yaml:"sweep_period"`
}

// LogConfig controls the default slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Addr: ":8080",
		Env:  "development",
		API: APIConfig{
			BaseURL: "https://h-infinite-power.store",
			Prefix:  "/test-api",
			Timeout: 10 * time.Second,
		},
		DB: DBConfig{
			Path:        "checkin.db",
			SlowQuery:   50 * time.Millisecond,
			SweepPeriod: time.Hour,
		},
		Log:           LogConfig{Level: "info", Format: "text"},
		SlowRequestMs: 500,
	}
}

// Load builds the configuration.
// PRE: path is empty or names a YAML file
// POST: returns a validated Config; a missing .env is ignored, a missing
// YAML file named explicitly is an error
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.Addr, "CHECKIN_ADDR")
	envOverride(&cfg.Env, "CHECKIN_ENV")
	envOverride(&cfg.API.BaseURL, "CHECKIN_API_BASE_URL")
	envOverride(&cfg.API.Prefix, "CHECKIN_API_PREFIX")
	envOverride(&cfg.DB.Path, "CHECKIN_DB_PATH")
	envOverride(&cfg.CSRFKey, "CHECKIN_CSRF_KEY")
	envOverride(&cfg.Log.Level, "CHECKIN_LOG_LEVEL")
	envOverride(&cfg.Log.Format, "CHECKIN_LOG_FORMAT")
	if err := envOverrideDuration(&cfg.API.Timeout, "CHECKIN_API_TIMEOUT"); err != nil {
		return err
	}
	return envOverrideInt(&cfg.SlowRequestMs, "CHECKIN_SLOW_REQUEST_MS")
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envOverrideDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// IsProduction reports whether Env is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// CSRFKeyBytes decodes CSRFKey. An empty key yields nil.
func (c Config) CSRFKeyBytes() []byte {
	if c.CSRFKey == "" {
		return nil
	}
	b, _ := hex.DecodeString(c.CSRFKey)
	return b
}

// Validate checks the configuration is usable.
// PRE: none
// POST: returns the first problem found, or nil
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	if c.CSRFKey != "" {
		if b, err := hex.DecodeString(c.CSRFKey); err != nil || len(b) != 32 {
			return errors.New("csrf key must be 64 hex characters")
		}
	}
	if c.IsProduction() && c.CSRFKey == "" {
		return errors.New("csrf key is required in production")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q must be text or json", c.Log.Format)
	}
	if c.DB.Path == "" {
		return errors.New("db path is required")
	}
	if c.DB.SweepPeriod <= 0 {
		return errors.New("db sweep period must be positive")
	}
	return nil
}

// LogValue hides the CSRF key when the config is logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.String("env", c.Env),
		slog.String("api_base_url", c.API.BaseURL),
		slog.String("api_prefix", c.API.Prefix),
		slog.Duration("api_timeout", c.API.Timeout),
		slog.String("db_path", c.DB.Path),
		slog.Bool("csrf_key_set", c.CSRFKey != ""),
	)
}
