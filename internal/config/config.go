// Package config defines the service configuration and its loading.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"sterling/pkg/constants"
)

// Configuration holds all runtime settings for the sterling service.
type Configuration struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Tax     TaxConfig     `yaml:"tax,omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address                string `yaml:"address,omitempty"`
	MaxBodyBytes           int64  `yaml:"maxBodyBytes,omitempty"`
	RateLimitCapacity      int    `yaml:"rateLimitCapacity,omitempty"`
	RateLimitRefillSeconds int    `yaml:"rateLimitRefillSeconds,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// TaxConfig points to an optional tax table file overriding the embedded
// defaults.
type TaxConfig struct {
	TablesFile string `yaml:"tablesFile,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. An empty path returns defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	configuration := Default()
	if configPath == "" {
		return configuration, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	if err := v.Unmarshal(configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return configuration, nil
}

// Default returns the configuration used when no file is provided.
func Default() *Configuration {
	c := &Configuration{}
	c.applyDefaults()
	return c
}

func (c *Configuration) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
	if c.Server.RateLimitCapacity <= 0 {
		c.Server.RateLimitCapacity = constants.DefaultRateLimitCapacity
	}
	if c.Server.RateLimitRefillSeconds <= 0 {
		c.Server.RateLimitRefillSeconds = constants.DefaultRateLimitRefillSeconds
	}
}

// RateLimitRefill returns the refill interval as a duration.
func (c *Configuration) RateLimitRefill() time.Duration {
	return time.Duration(c.Server.RateLimitRefillSeconds) * time.Second
}
