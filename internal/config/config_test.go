package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "bedrock", cfg.LLMProvider)
	assert.InDelta(t, 0.8, cfg.ConfidenceDefault, 0.0001)
	assert.True(t, cfg.UseMemoryQueue)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, 12*time.Second, cfg.LLMTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("CONFIDENCE_THRESHOLD_DEFAULT", "0.65")
	t.Setenv("USE_MEMORY_QUEUE", "false")
	t.Setenv("LLM_TIMEOUT", "30s")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.InDelta(t, 0.65, cfg.ConfidenceDefault, 0.0001)
	assert.False(t, cfg.UseMemoryQueue)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
}

func TestLoad_IgnoresMalformedNumerics(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("CONFIDENCE_THRESHOLD_DEFAULT", "high")

	cfg := Load()

	assert.Equal(t, 2, cfg.WorkerCount)
	assert.InDelta(t, 0.8, cfg.ConfidenceDefault, 0.0001)
}
