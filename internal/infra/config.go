package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"valutatrade/internal/domain"
)

const (
	// DefaultUserAgent identifies the hub to rate providers.
	DefaultUserAgent = "ValutaTradeHub/1.0"
)

// Config holds all application settings. Sensitive values can be overridden
// through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	BaseCurrency string `yaml:"base_currency"`

	Storage struct {
		Dir       string `yaml:"dir"`
		HistoryDB string `yaml:"history_db"`
	} `yaml:"storage"`

	Rates struct {
		TTLSec            int `yaml:"ttl_sec"`
		RequestTimeoutSec int `yaml:"request_timeout_sec"`

		CoinGecko struct {
			URL string            `yaml:"url"`
			IDs map[string]string `yaml:"ids"`
		} `yaml:"coingecko"`

		ExchangeRate struct {
			URL    string `yaml:"url"`
			APIKey string `yaml:"api_key"`
		} `yaml:"exchangerate"`
	} `yaml:"rates"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file. A missing file is fatal
// to startup and reported as ErrConfigNotFound.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.BaseCurrency == "" {
		return fmt.Errorf("base currency is required")
	}
	c.BaseCurrency = strings.ToUpper(c.BaseCurrency)

	if c.Storage.Dir == "" {
		return fmt.Errorf("storage dir is required")
	}
	if c.Storage.HistoryDB == "" {
		return fmt.Errorf("history db path is required")
	}

	if c.Rates.TTLSec <= 0 {
		return fmt.Errorf("rates TTL must be positive")
	}
	if c.Rates.RequestTimeoutSec <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if !strings.HasPrefix(c.Rates.CoinGecko.URL, "http://") && !strings.HasPrefix(c.Rates.CoinGecko.URL, "https://") {
		return fmt.Errorf("invalid CoinGecko URL: %s", c.Rates.CoinGecko.URL)
	}
	if len(c.Rates.CoinGecko.IDs) == 0 {
		return fmt.Errorf("at least one CoinGecko currency id is required")
	}

	return nil
}

// RatesTTL returns the pair time-to-live as a duration.
func (c *Config) RatesTTL() time.Duration {
	return time.Duration(c.Rates.TTLSec) * time.Second
}

// RequestTimeout returns the per-call provider timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Rates.RequestTimeoutSec) * time.Second
}

// overrideWithEnv replaces settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("EXCHANGERATE_API_KEY"); key != "" {
		cfg.Rates.ExchangeRate.APIKey = key
	}
	if dir := os.Getenv("VALUTATRADE_DATA_DIR"); dir != "" {
		cfg.Storage.Dir = dir
	}
	if level := os.Getenv("VALUTATRADE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
