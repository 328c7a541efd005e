package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendNone, cfg.Backup.Backend)
	assert.Equal(t, "promptkeep-backup.json", cfg.Backup.S3.Key)
	assert.False(t, cfg.SyncOnSave)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /tmp/pk
log_level: debug
sync_on_save: true
backup:
  backend: s3
  s3:
    bucket: my-bucket
    endpoint: http://localhost:9000
license:
  server_url: https://license.example.com/api
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pk", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.SyncOnSave)
	assert.Equal(t, BackendS3, cfg.Backup.Backend)
	assert.Equal(t, "my-bucket", cfg.Backup.S3.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.Backup.S3.Endpoint)
	assert.Equal(t, "https://license.example.com/api", cfg.License.ServerURL)
	assert.Equal(t, filepath.Join("/tmp/pk", "promptkeep.db"), cfg.DBPath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROMPTKEEP_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_S3BackendRequiresBucket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backup:\n  backend: s3\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backup:\n  backend: ftp\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
