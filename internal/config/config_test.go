package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DEDUP_BACKEND", "DEDUP_RETENTION_HOURS", "GEMINI_MODEL", "GOOGLE_API_KEY", "GEMINI_API_KEY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, DedupMemory, cfg.Dedup.Backend)
	assert.Equal(t, 48*time.Hour, cfg.Dedup.Retention)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, 12*time.Second, cfg.BallDontLie.ProfileDeadline)
	assert.False(t, cfg.OpenAI.EnableFallback)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DEDUP_BACKEND", "Redis")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("OPENAI_ENABLE_FALLBACK", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, DedupRedis, cfg.Dedup.Backend)
	assert.Equal(t, "gem-key", cfg.Gemini.APIKey)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.OpenAI.EnableFallback)
	assert.InDelta(t, 2.5, cfg.Server.RateLimitRPS, 0.0001)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"port":      {"PORT": "70000"},
		"backend":   {"DEDUP_BACKEND": "sqlite"},
		"retention": {"DEDUP_RETENTION_HOURS": "12"},
		"rate":      {"BALLDONTLIE_REQUESTS_PER_MINUTE": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
