package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "disk", cfg.Storage.Type)
	assert.Equal(t, "/prompt", cfg.Answer.Path)
	assert.Equal(t, 120*time.Second, cfg.Answer.Timeout)
	assert.True(t, cfg.Defaults.UseRag)
	assert.False(t, cfg.Defaults.StrictPrompt)
	assert.Equal(t, "Claude", cfg.Defaults.ModelName)
	assert.Same(t, cfg, Get())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
storage:
  type: sqlite
  sqlite_path: /tmp/chat.db
answer:
  base_url: https://example.invalid/prod
  timeout: 5s
  headers:
    X-Client: chat
defaults:
  model_name: Nova
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("CHAT_ANSWER_AUTH_TOKEN", "token-from-env")
	t.Setenv("CHAT_SERVER_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "https://example.invalid/prod", cfg.Answer.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Answer.Timeout)
	assert.Equal(t, "token-from-env", cfg.Answer.AuthToken)
	assert.Equal(t, "chat", cfg.Answer.Headers["x-client"])
	assert.Equal(t, "Nova", cfg.Defaults.ModelName)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
