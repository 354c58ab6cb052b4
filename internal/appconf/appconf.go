// Package appconf holds application configuration and the JSON config
// file loader.
package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "unknown"
	}
}

// EnvFlagToEnvironment maps a config/flag string to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// Config holds the runtime settings for the range ring engine and CLI.
type Config struct {
	Env        Environment
	DataPath   string
	Resolution string
	SampleCap  int
	Verbose    bool
}

// JSONConfig mirrors the config file layout. Use ToAppConfig to convert
// to the runtime Config.
type JSONConfig struct {
	Env        string `json:"env"`
	DataPath   string `json:"data-path"`
	Resolution string `json:"resolution"`
	SampleCap  int    `json:"sample-cap"`
	Verbose    bool   `json:"verbose"`
}

// LoadFromFile reads and validates a JSON config file.
func LoadFromFile(path string) (*JSONConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *JSONConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Resolution)) {
	case "", "low", "normal", "high":
	default:
		return fmt.Errorf("resolution must be low, normal, or high, got %q", c.Resolution)
	}
	if c.SampleCap < 0 {
		return fmt.Errorf("sample-cap must be non-negative, got %d", c.SampleCap)
	}
	return nil
}

// ToAppConfig converts the file representation to the runtime Config.
func (c *JSONConfig) ToAppConfig() Config {
	res := c.Resolution
	if res == "" {
		res = "normal"
	}
	return Config{
		Env:        EnvFlagToEnvironment(c.Env),
		DataPath:   c.DataPath,
		Resolution: res,
		SampleCap:  c.SampleCap,
		Verbose:    c.Verbose,
	}
}
