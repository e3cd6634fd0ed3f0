package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
telegram:
  token: "123456:test-token"
  admin_user_id: 42
gemini:
  api_key: "test-api-key"
api:
  key: "test-api-key"
`

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 30*time.Minute, cfg.Contest.CooldownWindow)
	assert.Equal(t, int64(10), cfg.Contest.PointsPerPush)
	assert.Equal(t, 365, cfg.Contest.HydrateLimit)
	assert.Equal(t, "https://api.dexscreener.com", cfg.Dex.BaseURL)
	assert.True(t, cfg.API.Enabled)

	daily, ok := cfg.Scheduler.Tasks["daily_winner"]
	require.True(t, ok)
	assert.True(t, daily.Enabled)
	assert.Equal(t, "0 0 0 * * *", daily.Schedule)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, minimalConfig+`
contest:
  cooldown_window: 8h
  points_per_push: 25
logger:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8*time.Hour, cfg.Contest.CooldownWindow)
	assert.Equal(t, int64(25), cfg.Contest.PointsPerPush)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, `
telegram:
  admin_user_id: 42
gemini:
  api_key: "test-api-key"
api:
  key: "test-api-key"
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigAPIKeyRequiredWhenEnabled(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
  admin_user_id: 42
gemini:
  api_key: "test-api-key"
api:
  enabled: true
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.key")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MYCOBOT_TELEGRAM_TOKEN", "123456:env-token")
	t.Setenv("MYCOBOT_TELEGRAM_ADMIN_USER_ID", "42")
	t.Setenv("MYCOBOT_GEMINI_API_KEY", "env-api-key")
	t.Setenv("MYCOBOT_API_KEY", "env-api-key")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "123456:env-token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminUserID)
}
