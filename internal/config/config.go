// Package config loads fitline settings from ~/.fitline/config.yaml and
// FITLINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every setting. Environment variables win over the file,
// the file wins over defaults.
type Config struct {
	APIURL      string        `yaml:"api_url" env:"FITLINE_API_URL" env-default:"http://localhost:8000"`
	StateDir    string        `yaml:"state_dir" env:"FITLINE_STATE_DIR"`
	Timeout     time.Duration `yaml:"timeout" env:"FITLINE_TIMEOUT" env-default:"30s"`
	ChatTimeout time.Duration `yaml:"chat_timeout" env:"FITLINE_CHAT_TIMEOUT" env-default:"15s"`
	RateLimit   float64       `yaml:"rate_limit" env:"FITLINE_RATE_LIMIT" env-default:"0"`
	RateBurst   int           `yaml:"rate_burst" env:"FITLINE_RATE_BURST" env-default:"5"`
	LogLevel    string        `yaml:"log_level" env:"FITLINE_LOG_LEVEL" env-default:"info"`

	// CheckoutWait is how long `fitline subscribe` waits for the browser
	// to come back from the hosted payment page.
	CheckoutWait time.Duration `yaml:"checkout_wait" env:"FITLINE_CHECKOUT_WAIT" env-default:"10m"`

	Entitlement Entitlement `yaml:"entitlement"`

	// AccessToken and RefreshToken seed an in-memory session that is never
	// written to disk. Environment only.
	AccessToken  string `yaml:"-" env:"FITLINE_ACCESS_TOKEN"`
	RefreshToken string `yaml:"-" env:"FITLINE_REFRESH_TOKEN"`
}

// Entitlement bounds premium verification polling.
type Entitlement struct {
	MaxAttempts   int           `yaml:"max_attempts" env:"FITLINE_VERIFY_ATTEMPTS" env-default:"10"`
	Interval      time.Duration `yaml:"interval" env:"FITLINE_VERIFY_INTERVAL" env-default:"2s"`
	RedirectDelay time.Duration `yaml:"redirect_delay" env:"FITLINE_REDIRECT_DELAY" env-default:"2s"`
}

// DefaultDir returns ~/.fitline.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".fitline"), nil
}

// Path returns the config file location: FITLINE_CONFIG if set, else
// ~/.fitline/config.yaml.
func Path() (string, error) {
	if p := os.Getenv("FITLINE_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path if it exists, then the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if errors.Is(statErr, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("stat config %s: %w", path, statErr)
	}

	if cfg.StateDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q must be an http(s) URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ChatTimeout <= 0 {
		return fmt.Errorf("chat_timeout must be positive")
	}
	if c.CheckoutWait <= 0 {
		return fmt.Errorf("checkout_wait must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be debug, info, warn or error", c.LogLevel)
	}
	if c.Entitlement.MaxAttempts < 1 {
		return fmt.Errorf("entitlement.max_attempts must be at least 1")
	}
	if c.Entitlement.Interval <= 0 || c.Entitlement.RedirectDelay < 0 {
		return fmt.Errorf("entitlement intervals must be positive")
	}
	return nil
}
