// Package config reads process configuration from RECORDVIEW_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix consumed by Load.
const Prefix = "RECORDVIEW"

// Config holds the settings shared by the CLI subcommands. Flags override
// these values after Load.
type Config struct {
	APIURL          string        `envconfig:"API_URL"`
	Language        string        `envconfig:"LANGUAGE" default:"en"`
	BaseLanguage    string        `envconfig:"BASE_LANGUAGE" default:"en"`
	SearchLimit     int           `envconfig:"SEARCH_LIMIT" default:"20"`
	Debounce        time.Duration `envconfig:"DEBOUNCE" default:"300ms"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	LookupCacheSize int           `envconfig:"LOOKUP_CACHE_SIZE" default:"128"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"warn"`
	LogJSON         bool          `envconfig:"LOG_JSON"`
	ListenAddr      string        `envconfig:"LISTEN_ADDR" default:":8080"`
}

// Load processes the environment into a Config with defaults applied.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the components cannot work with.
func (c Config) Validate() error {
	if c.SearchLimit < 0 {
		return fmt.Errorf("config: search limit must not be negative (got %d)", c.SearchLimit)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("config: debounce must not be negative (got %s)", c.Debounce)
	}
	if c.LookupCacheSize < 0 {
		return fmt.Errorf("config: lookup cache size must not be negative (got %d)", c.LookupCacheSize)
	}
	return nil
}
