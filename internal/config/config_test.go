package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("INVOICE_API_URL", "https://localhost:44397/api")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://localhost:44397/api", cfg.APIURL)
		assert.False(t, cfg.Production)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "console", cfg.LogFormat)
		assert.Equal(t, "stderr", cfg.LogOutput)
	})

	t.Run("production defaults to info logging", func(t *testing.T) {
		t.Setenv("INVOICE_API_URL", "https://api.example.test/api")
		t.Setenv("PRODUCTION", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Production)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("explicit log level wins", func(t *testing.T) {
		t.Setenv("INVOICE_API_URL", "https://api.example.test/api")
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("missing API URL", func(t *testing.T) {
		t.Setenv("INVOICE_API_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVOICE_API_URL is required")
	})

	t.Run("non-http API URL", func(t *testing.T) {
		t.Setenv("INVOICE_API_URL", "ftp://nope")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be an http(s) URL")
	})
}
