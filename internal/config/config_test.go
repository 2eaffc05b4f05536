package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsecret")

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "clinic_core", cfg.Database.DBName)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth.JWTSecret = ""

	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresWebhookSecret(t *testing.T) {
	cfg := validConfig(t)
	cfg.Payment.WebhookSecret = ""

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownCacheType(t *testing.T) {
	cfg := validConfig(t)
	cfg.Cache.Type = "memcached"

	assert.Error(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := validConfig(t)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
