package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()

	dir := filepath.Join(home, ConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
}

func TestSourceDefaults(t *testing.T) {
	home := t.TempDir()
	source, err := NewSource(viper.New(), home)
	require.NoError(t, err)

	settings, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Settings{
		DailyLimit:      domain.DefaultDailyLimit,
		ChatModel:       domain.DefaultChatModel,
		ChatTemperature: domain.DefaultChatTemperature,
		ProviderBaseURL: domain.DefaultProviderBaseURL,
	}, settings)
	assert.Equal(t, "warn", source.LogLevel())
	assert.Equal(t, filepath.Join(home, ConfigDir, "usage.toml"), source.Viper().GetString(KeyUsagePath))
}

func TestSourceReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, `
cerebras_api_key = " csk-from-file "
api_daily_limit = 250
chat_model = "llama3.1-70b"
chat_temperature = 0.2

[provider]
base_url = "http://127.0.0.1:9999/v1"
timeout = "45s"
`)

	source, err := NewSource(viper.New(), home)
	require.NoError(t, err)

	settings, err := source.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "csk-from-file", settings.APIKey)
	assert.Equal(t, 250, settings.DailyLimit)
	assert.Equal(t, "llama3.1-70b", settings.ChatModel)
	assert.InDelta(t, 0.2, settings.ChatTemperature, 0.0001)
	assert.Equal(t, "http://127.0.0.1:9999/v1", settings.ProviderBaseURL)
	assert.Equal(t, 45*time.Second, settings.ProviderTimeout)
}

func TestSourceRereadsFileOnEveryLoad(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "api_daily_limit = 10\n")

	source, err := NewSource(viper.New(), home)
	require.NoError(t, err)

	first, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, first.DailyLimit)

	writeConfig(t, home, "api_daily_limit = 20\n")

	second, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, second.DailyLimit)
}

func TestSourceEnvironmentOverrides(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "chat_model = \"llama3.1-8b\"\n")
	t.Setenv("CODELYNX_CHAT_MODEL", "llama-3.3-70b")
	t.Setenv("CODELYNX_PROVIDER_BASE_URL", "http://localhost:1234/v1")

	source, err := NewSource(viper.New(), home)
	require.NoError(t, err)

	settings, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b", settings.ChatModel)
	assert.Equal(t, "http://localhost:1234/v1", settings.ProviderBaseURL)
}

func TestSourceMalformedConfigReturnsError(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, "api_daily_limit = [\n")

	_, err := NewSource(viper.New(), home)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestSourceLoadHonoursCancellation(t *testing.T) {
	source, err := NewSource(viper.New(), t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
