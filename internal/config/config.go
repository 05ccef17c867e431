// Package config loads voyage settings from YAML over embedded defaults, then from
// VOYAGE_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/voyage/pkg/adapters/retry"
	"github.com/aretw0/voyage/pkg/budget"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvStore         = "VOYAGE_STORE"
	EnvRedisURL      = "VOYAGE_REDIS_URL"
	EnvLogLevel      = "VOYAGE_LOG_LEVEL"
	EnvCatalog       = "VOYAGE_CATALOG"
	EnvMaxInputSize  = "VOYAGE_MAX_INPUT_SIZE"
	EnvEncryptionKey = "VOYAGE_ENCRYPTION_KEY"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = ".voyage/config.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full voyage configuration.
type Config struct {
	Currency     string             `yaml:"currency"`
	Rates        map[string]float64 `yaml:"rates"`
	Places       map[string]string  `yaml:"places"`
	Styles       []string           `yaml:"styles"`
	Interests    []string           `yaml:"interests"`
	Store        StoreConfig        `yaml:"store"`
	Retry        retry.Policy       `yaml:"retry"`
	Catalog      string             `yaml:"catalog"`
	LogLevel     string             `yaml:"log_level"`
	MaxInputSize int                `yaml:"max_input_size"`
	HTTP         HTTPConfig         `yaml:"http"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Driver   string        `yaml:"driver"`
	Path     string        `yaml:"path"`
	RedisURL string        `yaml:"redis_url"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"`

	RedactPII     bool     `yaml:"redact_pii"`
	Redact        []string `yaml:"redact"`
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the embedded defaults.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return &cfg
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is DefaultPath or empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Store.RedisURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvCatalog); ok {
		c.Catalog = v
	}
	if v, ok := lookup(EnvEncryptionKey); ok && v != "" {
		c.Store.EncryptionKey = v
	}
	if v, ok := lookup(EnvMaxInputSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxInputSize, err)
		}
		c.MaxInputSize = n
	}
	return nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	for code, rate := range c.Rates {
		if rate <= 0 {
			errs = append(errs, fmt.Errorf("rate for %s must be positive", code))
		}
	}
	if c.Currency != "" {
		if _, ok := c.Rates[strings.ToUpper(c.Currency)]; !ok {
			errs = append(errs, fmt.Errorf("currency %s has no rate", c.Currency))
		}
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, errors.New("max_input_size must not be negative"))
	}
	return errors.Join(errs...)
}

// RateTable builds the currency converter.
func (c *Config) RateTable() *budget.RateTable {
	rates := make(map[string]decimal.Decimal, len(c.Rates))
	for code, rate := range c.Rates {
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return budget.NewRateTable(rates)
}
