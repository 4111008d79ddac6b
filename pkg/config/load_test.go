package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"useraccounts/pkg/config"
)

type sampleConfig struct {
	Name string `env:"SAMPLE_NAME" env-default:"default-name"`
	Port int    `env:"SAMPLE_PORT" env-default:"8080"`
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")

	cfg, err := config.Load[sampleConfig](context.Background(), "sample", "")

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadMissingFileFallsBackToEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "9090")

	cfg, err := config.Load[sampleConfig](context.Background(), "sample",
		filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, "default-name", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAMPLE_NAME=from-file\nSAMPLE_PORT=7000\n"), 0o600))
	t.Setenv("SAMPLE_NAME", "")
	t.Setenv("SAMPLE_PORT", "")

	cfg, err := config.Load[sampleConfig](context.Background(), "sample", path)

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 7000, cfg.Port)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "not-a-number")

	cfg, err := config.Load[sampleConfig](context.Background(), "sample", "")

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
