package config

import (
	"fmt"
	"os"

	"market-pulse/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides validation and defaulting.
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads a Config from a YAML file.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Poll.MaxIntervalSeconds == 0 {
		c.Poll.MaxIntervalSeconds = 300
	}
	if c.Poll.BreakerThreshold == 0 {
		c.Poll.BreakerThreshold = 3
	}
	if c.Poll.BreakerRecoverySec == 0 {
		c.Poll.BreakerRecoverySec = 60
	}
	if c.Stream.HeartbeatSeconds == 0 {
		c.Stream.HeartbeatSeconds = models.DefaultHeartbeatSecs
	}
	if c.Stream.SubscriberBuffer == 0 {
		c.Stream.SubscriberBuffer = models.DefaultSubscriberSize
	}
	if c.History.SeedDays == 0 {
		c.History.SeedDays = 365
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 7
	}
	if c.History.IntradayCapacity == 0 {
		// One point per minute over a full continuous-trading day.
		c.History.IntradayCapacity = 1440
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll interval must be greater than 0")
	}
	if c.Poll.MaxIntervalSeconds < c.Poll.IntervalSeconds {
		return fmt.Errorf("max poll interval must be >= poll interval")
	}

	if len(c.Universe.Stocks) == 0 && len(c.Universe.Crypto) == 0 {
		return fmt.Errorf("at least one ticker must be configured")
	}
	for i, ct := range c.Universe.Crypto {
		if ct.Ticker == "" || ct.CoinGeckoID == "" {
			return fmt.Errorf("crypto ticker %d must have a ticker and a coingecko_id", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
