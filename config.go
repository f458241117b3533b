// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Inputs
	ConsumptionPath string `yaml:"consumption_path"`
	PricingPath     string `yaml:"pricing_path"`

	// Estimation settings
	Interpolate             bool `yaml:"interpolate"`
	InterpolationWindowDays int  `yaml:"interpolation_window_days"`

	// Reporting
	CurrencySymbol string `yaml:"currency_symbol"`
	ChartTheme     string `yaml:"chart_theme"`

	// Storage
	StoragePath   string `yaml:"storage_path"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`

	// Debugging
	Debug     bool   `yaml:"debug"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Interpolate:             true,
		InterpolationWindowDays: DefaultInterpolationWindowDays,
		CurrencySymbol:          "€",
		ChartTheme:              "dark",
		StoragePath:             getDefaultStoragePath(),
		CacheTTLHours:           24,
		LogFormat:               "text",
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is not an
// error, the defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config.applyEnvironmentVariables()
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentVariables()

	return config, nil
}

// getDefaultStoragePath returns the default storage path
func getDefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".billestimator"
	}
	return filepath.Join(home, ".config", "billestimator")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("BILLESTIMATOR_CONSUMPTION_PATH"); val != "" {
		c.ConsumptionPath = val
	}
	if val := os.Getenv("BILLESTIMATOR_PRICING_PATH"); val != "" {
		c.PricingPath = val
	}
	if val := os.Getenv("BILLESTIMATOR_STORAGE_PATH"); val != "" {
		c.StoragePath = val
	}
	if val := os.Getenv("BILLESTIMATOR_INTERPOLATE"); val != "" {
		c.Interpolate = val == "true" || val == "1"
	}
	if val := os.Getenv("BILLESTIMATOR_INTERPOLATION_WINDOW_DAYS"); val != "" {
		if days, err := strconv.Atoi(val); err == nil {
			c.InterpolationWindowDays = days
		}
	}
	if val := os.Getenv("BILLESTIMATOR_CACHE_TTL_HOURS"); val != "" {
		if hours, err := strconv.Atoi(val); err == nil {
			c.CacheTTLHours = hours
		}
	}
	if val := os.Getenv("BILLESTIMATOR_CURRENCY"); val != "" {
		c.CurrencySymbol = val
	}
	if val := os.Getenv("BILLESTIMATOR_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var problems []string

	if c.ConsumptionPath == "" {
		problems = append(problems, (&ConfigError{Field: "consumption_path", Message: "is required"}).Error())
	}

	if c.InterpolationWindowDays < 1 || c.InterpolationWindowDays > 60 {
		problems = append(problems, (&ConfigError{Field: "interpolation_window_days", Message: "must be between 1 and 60"}).Error())
	}

	if c.CacheTTLHours < 0 {
		problems = append(problems, (&ConfigError{Field: "cache_ttl_hours", Message: "must not be negative"}).Error())
	}

	switch c.ChartTheme {
	case "dark", "light", "grafana", "ant":
	default:
		problems = append(problems, (&ConfigError{Field: "chart_theme", Message: "must be one of dark, light, grafana, ant"}).Error())
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		problems = append(problems, (&ConfigError{Field: "log_format", Message: "must be text or json"}).Error())
	}

	if c.CurrencySymbol == "" {
		c.CurrencySymbol = "€"
	}

	// Set default storage path if empty
	if c.StoragePath == "" {
		c.StoragePath = getDefaultStoragePath()
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}

// NewLoggerFromConfig builds the logger the configuration asks for
func NewLoggerFromConfig(c *Config) *Logger {
	if c.LogFormat == "json" {
		return NewJSONLogger(c.Debug)
	}
	return NewLogger(c.Debug)
}
