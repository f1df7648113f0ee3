package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gogdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage_path: /srv/gogdb/data
log:
  level: debug
  file: /var/log/gogdb.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/gogdb/data", cfg.StoragePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/gogdb.log", cfg.Log.File)
}

func TestLoad_DefaultsForMissingValues(t *testing.T) {
	path := writeConfig(t, "storage_path: /srv/data\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	// Run in a directory without a gogdb.yaml.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyStoragePath(t *testing.T) {
	path := writeConfig(t, "storage_path: \"\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage_path")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "storage_path: /srv/data\n")
	t.Setenv("GOGDB_STORAGE_PATH", "/mnt/other")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/other", cfg.StoragePath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage_path: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}
