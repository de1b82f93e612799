package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete tradebook configuration.
type Config struct {
	Store StoreConfig `json:"store" yaml:"store"`
	Forex ForexConfig `json:"forex" yaml:"forex"`
	API   APIConfig   `json:"api" yaml:"api"`
}

// StoreConfig locates the trade store.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ForexConfig describes the forex broker's statement conventions.
type ForexConfig struct {
	// Timezone is the IANA name of the broker server's civil timezone,
	// e.g. "Europe/Athens". Statement times are converted from it.
	Timezone string `json:"timezone" yaml:"timezone"`
	// ContractSizes maps symbol prefixes to per-lot multipliers,
	// overriding the built-in metals defaults.
	ContractSizes map[string]float64 `json:"contract_sizes,omitempty" yaml:"contract_sizes,omitempty"`
}

// APIConfig describes the brokerage transactions API connection.
type APIConfig struct {
	BaseURL  string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	TokenEnv string   `json:"token_env" yaml:"token_env"`
	Accounts []string `json:"accounts,omitempty" yaml:"accounts,omitempty"`
}

// Location resolves the configured forex timezone.
func (c *ForexConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("forex.timezone: %w", err)
	}
	return loc, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if _, err := c.Forex.Location(); err != nil {
		return err
	}
	for prefix, size := range c.Forex.ContractSizes {
		if size <= 0 {
			return fmt.Errorf("forex.contract_sizes[%s] must be positive", prefix)
		}
	}
	if c.API.TokenEnv == "" {
		return fmt.Errorf("api.token_env is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Path: "./tradebook.sqlite"},
		Forex: ForexConfig{Timezone: "Europe/Athens"},
		API:   APIConfig{TokenEnv: "TRADEBOOK_API_TOKEN"},
	}
}
