// Package config provides configuration management for the wheel analyzer.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultRefreshInterval is used when engine.refresh_interval is unset.
	defaultRefreshInterval = "15m"
	// defaultDashboardPort is used when dashboard.port is unset.
	defaultDashboardPort = 9000
	// defaultStoragePath is used when storage.path is unset.
	defaultStoragePath = "wheelhouse.json"
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Engine      EngineConfig      `yaml:"engine"`
	Storage     StorageConfig     `yaml:"storage"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// LedgerConfig defines where the trade ledger comes from. Exactly one of
// file.path or api.endpoint must be configured.
type LedgerConfig struct {
	File LedgerFileConfig `yaml:"file"`
	API  LedgerAPIConfig  `yaml:"api"`
}

// LedgerFileConfig points at a JSON trade export on disk.
type LedgerFileConfig struct {
	Path string `yaml:"path"`
}

// LedgerAPIConfig defines the brokerage history API settings.
type LedgerAPIConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	AccountID string `yaml:"account_id"`
}

// EngineConfig defines analysis parameters.
type EngineConfig struct {
	// Symbols restricts analysis to an allowlist; empty means all symbols.
	Symbols []string `yaml:"symbols"`
	// RefreshInterval is how often long-running mode re-reads the ledger.
	RefreshInterval string `yaml:"refresh_interval"`
}

// StorageConfig defines snapshot persistence settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DashboardConfig defines the reporting API server settings.
type DashboardConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks that all configuration values are valid and consistent,
// applying defaults for optional settings.
func (c *Config) Validate() error {
	c.applyDefaults()

	switch c.Environment.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be debug, info, warn or error")
	}

	hasFile := c.Ledger.File.Path != ""
	hasAPI := c.Ledger.API.Endpoint != ""
	if hasFile == hasAPI {
		return fmt.Errorf("exactly one of ledger.file.path or ledger.api.endpoint must be set")
	}
	if hasAPI {
		if c.Ledger.API.APIKey == "" {
			return fmt.Errorf("ledger.api.api_key is required when ledger.api.endpoint is set")
		}
		if c.Ledger.API.AccountID == "" {
			return fmt.Errorf("ledger.api.account_id is required when ledger.api.endpoint is set")
		}
	}

	if _, err := time.ParseDuration(c.Engine.RefreshInterval); err != nil {
		return fmt.Errorf("engine.refresh_interval invalid: %w", err)
	}

	if c.Dashboard.Enabled && (c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535) {
		return fmt.Errorf("dashboard.port must be in (0,65535]")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Engine.RefreshInterval == "" {
		c.Engine.RefreshInterval = defaultRefreshInterval
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = defaultDashboardPort
	}
}

// UsesAPI reports whether the ledger comes from the brokerage API rather
// than a file export.
func (c *Config) UsesAPI() bool {
	return c.Ledger.API.Endpoint != ""
}

// GetRefreshInterval returns the configured re-analysis interval.
func (c *Config) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Engine.RefreshInterval)
	if err != nil {
		return 15 * time.Minute // default
	}
	return d
}

// SymbolAllowed reports whether the symbol passes the allowlist; an empty
// allowlist admits everything.
func (c *Config) SymbolAllowed(symbol string) bool {
	if len(c.Engine.Symbols) == 0 {
		return true
	}
	for _, s := range c.Engine.Symbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}
