package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `env:"TEST_CFG_PORT" envDefault:"4000"`
	Folder  string        `env:"TEST_CFG_FOLDER" envDefault:"trackitdown"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"30s"`
	Brokers []string      `env:"TEST_CFG_BROKERS" envSeparator:","`
	Enabled bool          `env:"TEST_CFG_ENABLED" envDefault:"true"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "trackitdown", cfg.Folder)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Brokers)
	assert.True(t, cfg.Enabled)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_FOLDER", "uploads")
	t.Setenv("TEST_CFG_TIMEOUT", "2s")
	t.Setenv("TEST_CFG_BROKERS", "a:9092,b:9092")
	t.Setenv("TEST_CFG_ENABLED", "false")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "uploads", cfg.Folder)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
	assert.False(t, cfg.Enabled)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

type validatedConfig struct {
	Backend string `env:"TEST_CFG_BACKEND" envDefault:"memory"`
	URL     string `env:"TEST_CFG_URL"`
}

func (c *validatedConfig) Validate() error {
	if c.Backend == "remote" && c.URL == "" {
		return errors.New("TEST_CFG_URL is required for the remote backend")
	}
	return nil
}

func TestLoad_RunsValidate(t *testing.T) {
	t.Setenv("TEST_CFG_BACKEND", "remote")

	var cfg validatedConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "TEST_CFG_URL")
}

func TestLoad_ValidatePasses(t *testing.T) {
	t.Setenv("TEST_CFG_BACKEND", "remote")
	t.Setenv("TEST_CFG_URL", "http://objects.local")

	var cfg validatedConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "http://objects.local", cfg.URL)
}
