package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the CLI configuration, read from fstat.toml.
type Config struct {
	LedgerFile    string  `toml:"ledger_file"`
	ReportFile    string  `toml:"report_file"`
	DividendsFile string  `toml:"dividends_file"` // Offline dividend source, takes precedence over EODHD.
	BaseValue     float64 `toml:"base_value"`
	Cash          float64 `toml:"cash"`
	Currency      string  `toml:"currency"`

	Logging LoggingConfig `toml:"logging"`
	EODHD   EODHDConfig   `toml:"eodhd"`
	Redis   RedisConfig   `toml:"redis"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RedisConfig holds the dividend cache configuration. An empty Addr uses an
// in-process cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`
}

// GetTTL parses and returns the cache TTL
func (c *RedisConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		LedgerFile: "transactions.jsonl",
		ReportFile: "report.json",
		BaseValue:  10000,
		Currency:   "USD",
		Logging:    LoggingConfig{Level: "info"},
		EODHD: EODHDConfig{
			BaseURL: "https://eodhd.com/api",
			Timeout: "30s",
		},
		Redis: RedisConfig{TTL: "24h"},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones, missing files are skipped. A .env file
// in the working directory is loaded before the overrides are applied.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is optional.
	_ = godotenv.Load()
	applyEnvOverrides(config)
	config.Currency = strings.ToUpper(config.Currency)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}
	if level := os.Getenv("FSTAT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("FSTAT_LEDGER_FILE"); path != "" {
		config.LedgerFile = path
	}
}
