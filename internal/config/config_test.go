package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
http:
  addr: ":9090"
storage:
  path: /var/lib/tasktracker/board.sqlite
s3:
  endpoint: http://localhost:9000
  bucket: boards
  region: us-east-1
  access_key: minio
  secret_key: minio123
  use_path_style: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "/var/lib/tasktracker/board.sqlite", cfg.Storage.Path)
	require.NotNil(t, cfg.Snapshots)
	assert.Equal(t, "boards", cfg.Snapshots.Bucket)
	assert.True(t, cfg.Snapshots.UsePathStyle)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "tasktracker.sqlite", cfg.Storage.Path)
	assert.Nil(t, cfg.Snapshots)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
