package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"valutatrade/internal/domain"
)

const validConfig = `
app:
  name: valutatrade-hub
  version: 0.1.0
base_currency: usd
storage:
  dir: data
  history_db: data/history.db
rates:
  ttl_sec: 3600
  request_timeout_sec: 10
  coingecko:
    url: https://api.coingecko.com/api/v3/simple/price
    ids:
      BTC: bitcoin
      ETH: ethereum
  exchangerate:
    url: https://v6.exchangerate-api.com/v6
    api_key: ""
logging:
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseCurrency != "USD" {
		t.Errorf("base currency = %q, want USD (upper-cased)", cfg.BaseCurrency)
	}
	if cfg.RatesTTL() != time.Hour {
		t.Errorf("TTL = %s, want 1h", cfg.RatesTTL())
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Errorf("timeout = %s, want 10s", cfg.RequestTimeout())
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("EXCHANGERATE_API_KEY", "secret-from-env")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Rates.ExchangeRate.APIKey != "secret-from-env" {
		t.Errorf("api key = %q, want env override", cfg.Rates.ExchangeRate.APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	bad := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing base currency", func(c *Config) { c.BaseCurrency = "" }},
		{"zero ttl", func(c *Config) { c.Rates.TTLSec = 0 }},
		{"zero timeout", func(c *Config) { c.Rates.RequestTimeoutSec = 0 }},
		{"bad coingecko url", func(c *Config) { c.Rates.CoinGecko.URL = "ftp://nope" }},
		{"no coingecko ids", func(c *Config) { c.Rates.CoinGecko.IDs = nil }},
		{"no storage dir", func(c *Config) { c.Storage.Dir = "" }},
	}

	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, validConfig))
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}
