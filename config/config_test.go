package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvAgentName, "")
	t.Setenv(EnvInstructions, "")
	t.Setenv(EnvPollInterval, "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultAgentName, cfg.AgentName)
	assert.Equal(t, DefaultInstructions, cfg.Instructions)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvBaseURL, "http://localhost:8080/v1")
	t.Setenv(EnvModel, "gpt-4o")
	t.Setenv(EnvAgentName, "insurance-helper")
	t.Setenv(EnvInstructions, "Answer from the policy only.")
	t.Setenv(EnvPollInterval, "500ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "insurance-helper", cfg.AgentName)
	assert.Equal(t, "Answer from the policy only.", cfg.Instructions)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
}

func TestFromEnv_MissingAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvPollInterval, "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAPIKey)
}

func TestFromEnv_BadPollInterval(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvPollInterval, "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPollInterval)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())

	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())
}
