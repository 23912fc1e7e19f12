package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, 10, config.MaxRounds)
	assert.Equal(t, 0.02, config.Tolerance)
	assert.Equal(t, 0.7, config.BaseThreshold)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_ROUNDS", "25")
	t.Setenv("TOLERANCE", "0.05")
	t.Setenv("REFINE_DOMAIN", "law")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", config.Port)
	assert.Equal(t, 25, config.MaxRounds)
	assert.Equal(t, 0.05, config.Tolerance)
	assert.Equal(t, "law", config.Domain)
}

func TestLoadConfigYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("domain: medicine\nmax_rounds: 7\nbase_threshold: 0.5\n")
	require.NoError(t, os.WriteFile(path, content, 0644))
	t.Setenv("ONTOFORGE_CONFIG", path)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "medicine", config.Domain)
	assert.Equal(t, 7, config.MaxRounds)
	assert.Equal(t, 0.5, config.BaseThreshold)
	assert.Equal(t, "8080", config.Port, "unset fields keep defaults")
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_rounds: 7\n"), 0644))
	t.Setenv("ONTOFORGE_CONFIG", path)
	t.Setenv("MAX_ROUNDS", "3")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, config.MaxRounds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("ONTOFORGE_CONFIG", "/nonexistent/config.yaml")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestInvalidEnvValueFallsBack(t *testing.T) {
	t.Setenv("MAX_ROUNDS", "not a number")
	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, config.MaxRounds)
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"zero rounds", func(c *Config) { c.MaxRounds = 0 }},
		{"tolerance too high", func(c *Config) { c.Tolerance = 1 }},
		{"threshold out of range", func(c *Config) { c.BaseThreshold = 0.95 }},
		{"alpha zero", func(c *Config) { c.EMAAlpha = 0 }},
		{"negative floor", func(c *Config) { c.ConfidenceFloor = -0.1 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := Defaults()
			tc.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
