package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  game_port: 9001
redis:
  host: cache
`)

	require.NoError(t, LoadConfig(path))

	assert.Equal(t, 9001, GlobalConfig.Server.GamePort)
	assert.Equal(t, 3000, GlobalConfig.Server.GatewayPort)
	assert.Equal(t, "cache:6379", GlobalConfig.Redis.GetRedisAddr())
	assert.Equal(t, BackendFile, GlobalConfig.Scoreboard.Backend)
	assert.Equal(t, 100, GlobalConfig.Scoreboard.MaxEntries)
	assert.Equal(t, 16*time.Millisecond, GlobalConfig.Game.TickInterval)
	assert.Equal(t, 24*time.Hour, GlobalConfig.Auth.TokenTTL)
}

func TestLoadConfigParsesDurations(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s3cret
  token_ttl: 2h
game:
  tick_interval: 20ms
  arena_width: 800
  arena_height: 600
`)

	require.NoError(t, LoadConfig(path))

	assert.Equal(t, 2*time.Hour, GlobalConfig.Auth.TokenTTL)
	assert.Equal(t, 20*time.Millisecond, GlobalConfig.Game.TickInterval)
	assert.Equal(t, 800.0, GlobalConfig.Game.ArenaWidth)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
scoreboard:
  backend: mongo
`)

	err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

func TestLoadConfigMissingFile(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=basedefender sslmode=disable", cfg.Database.GetDSN())
}
