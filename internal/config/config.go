package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"invoicectl/internal/logger"
)

type Config struct {
	// Invoice API Configuration
	APIURL     string
	Production bool

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		APIURL:        getEnv("INVOICE_API_URL", ""),
		Production:    getBoolEnv("PRODUCTION", false),
		LogLevel:      getEnv("LOG_LEVEL", ""),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	// Outside production the client logs per-request diagnostics.
	if config.LogLevel == "" {
		if config.Production {
			config.LogLevel = "info"
		} else {
			config.LogLevel = "debug"
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("INVOICE_API_URL is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("INVOICE_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
