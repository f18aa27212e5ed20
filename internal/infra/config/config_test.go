package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcehound/internal/domain"
)

// setCredentials provides the minimum env vars Validate requires.
func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("SOURCEHOUND_SEARCH_API_KEY", "search-key")
	t.Setenv("SOURCEHOUND_SEARCH_ENGINE_ID", "engine-id")
	t.Setenv("SOURCEHOUND_SCORER_API_KEY", "scorer-key")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 10, cfg.Pipeline.DesiredResults)
	assert.Equal(t, 3, cfg.Pipeline.TopN)
	assert.Equal(t, 15*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, "google", cfg.Search.Provider)
	assert.Equal(t, "openai", cfg.Scorer.Provider.Name)
	assert.True(t, cfg.Scorer.CircuitBreaker.Enabled)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	setCredentials(t)
	t.Setenv("SOURCEHOUND_LOGGER_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "search-key", cfg.Search.APIKey)
	assert.Equal(t, 10, cfg.Pipeline.DesiredResults)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `
pipeline:
  desired_results: 20
  top_n: 5
search:
  provider: google
scorer:
  provider:
    model: gpt-4o
logger:
  level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Pipeline.DesiredResults)
	assert.Equal(t, 5, cfg.Pipeline.TopN)
	assert.Equal(t, "gpt-4o", cfg.Scorer.Provider.Model)
	assert.Equal(t, "warn", cfg.Logger.Level)
	// Untouched fields keep defaults.
	assert.Equal(t, 15*time.Second, cfg.Pipeline.StageTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	setCredentials(t)
	t.Setenv("SOURCEHOUND_PIPELINE_TOP_N", "7")
	path := writeConfig(t, `
pipeline:
  top_n: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.TopN)
}

func TestLoadInvalidYAML(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, "pipeline: [not a map")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
}

func TestEnvOverrideTelegramToken(t *testing.T) {
	cfg := Defaults()
	cfg.Channels = []ChannelConfig{{Type: "telegram"}}

	t.Setenv("SOURCEHOUND_TELEGRAM_TOKEN", "tok-from-env")
	ApplyEnvOverrides(cfg)

	require.NotNil(t, cfg.Channels[0].Telegram)
	assert.Equal(t, "tok-from-env", cfg.Channels[0].Telegram.Token)
}

func TestEnvOverrideDurations(t *testing.T) {
	cfg := Defaults()
	t.Setenv("SOURCEHOUND_PIPELINE_STAGE_TIMEOUT", "30s")
	t.Setenv("SOURCEHOUND_SEARCH_TIMEOUT", "5s")
	ApplyEnvOverrides(cfg)

	assert.Equal(t, 30*time.Second, cfg.Pipeline.StageTimeout)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
}

func TestEnvOverrideIgnoresInvalidNumbers(t *testing.T) {
	cfg := Defaults()
	t.Setenv("SOURCEHOUND_PIPELINE_TOP_N", "banana")
	ApplyEnvOverrides(cfg)
	assert.Equal(t, 3, cfg.Pipeline.TopN)
}

func validConfig() *Config {
	cfg := Defaults()
	cfg.Search.APIKey = "k"
	cfg.Search.EngineID = "cx"
	cfg.Scorer.Provider.APIKey = "k"
	return cfg
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateMissingSearchCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Search.APIKey = ""
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.api_key")
}

func TestValidateMissingScorerKey(t *testing.T) {
	cfg := validConfig()
	cfg.Scorer.Provider.APIKey = ""
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scorer.provider.api_key")
}

func TestValidateRejectsNonPositivePipeline(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.DesiredResults = 0
	cfg.Pipeline.TopN = -1
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "desired_results")
	assert.Contains(t, err.Error(), "top_n")
}

func TestValidateTelegramChannelNeedsToken(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = []ChannelConfig{{Type: "telegram"}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram.token")
}

func TestValidateWebformChannelNeedsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = []ChannelConfig{{Type: "webform", WebForm: &WebFormChannelConfig{}}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webform.addr")
}

func TestValidateRejectsDuplicateChannels(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = []ChannelConfig{
		{Type: "webform", WebForm: &WebFormChannelConfig{Addr: ":8080"}},
		{Type: "webform", WebForm: &WebFormChannelConfig{Addr: ":8081"}},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateRejectsUnknownChannelType(t *testing.T) {
	cfg := validConfig()
	cfg.Channels = []ChannelConfig{{Type: "carrier-pigeon"}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}
