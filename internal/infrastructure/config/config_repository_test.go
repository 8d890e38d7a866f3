package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airmote/airmote-go-client/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	r := NewConfigRepository()

	cfg, err := r.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	defaults := model.NewConfig()
	assert.Equal(t, defaults.ServerPort, cfg.ServerPort)
	assert.Equal(t, defaults.ServiceType, cfg.ServiceType)
	assert.Equal(t, defaults.FallbackDomain, cfg.FallbackDomain)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := NewConfigRepository()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := model.NewConfig()
	cfg.ServerPort = 9876
	cfg.ServiceName = "Living Room"
	cfg.FallbackDomain = "den.local"
	cfg.MaxReconnectAttempts = 5
	cfg.BackoffBase = 2 * time.Second
	cfg.CacheTTL = 48 * time.Hour
	cfg.LogLevel = model.LogLevelDebug

	require.NoError(t, r.Save(cfg, path))

	loaded, err := r.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9876, loaded.ServerPort)
	assert.Equal(t, "Living Room", loaded.ServiceName)
	assert.Equal(t, "den.local", loaded.FallbackDomain)
	assert.Equal(t, 5, loaded.MaxReconnectAttempts)
	assert.Equal(t, 2*time.Second, loaded.BackoffBase)
	assert.Equal(t, 48*time.Hour, loaded.CacheTTL)
	assert.Equal(t, model.LogLevelDebug, loaded.LogLevel)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	r := NewConfigRepository()
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("server_port: 9000\n"), 0644))

	cfg, err := r.Load(path)
	require.NoError(t, err)

	defaults := model.NewConfig()
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, defaults.ServiceType, cfg.ServiceType)
	assert.Equal(t, defaults.PingInterval, cfg.PingInterval)
	assert.Equal(t, defaults.MoveFlushInterval, cfg.MoveFlushInterval)
}

func TestLoadMalformedFile(t *testing.T) {
	r := NewConfigRepository()
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0644))

	_, err := r.Load(path)
	assert.Error(t, err)
}
