package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, ":9090", cfg.MetricsListenAddr)
	assert.Equal(t, "example.com", cfg.BaseDomain)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "crm", cfg.JWTIssuer)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm_test")
	t.Setenv("HTTP_LISTEN_ADDR", ":9999")
	t.Setenv("BASE_DOMAIN", "crm.test")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/crm_test", cfg.DatabaseURL)
	assert.Equal(t, ":9999", cfg.HTTPListenAddr)
	assert.Equal(t, "crm.test", cfg.BaseDomain)
	assert.True(t, cfg.DevMode)
}

func TestValidate_CRMAPIRequiresDatabaseAndSecret(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate("crm-api"))

	cfg.DatabaseURL = "postgres://localhost/crm"
	err := cfg.Validate("crm-api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate("crm-api"))
}

func TestValidate_SeedDemoRequiresDatabase(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate("seed-demo"))

	cfg.DatabaseURL = "postgres://localhost/crm"
	assert.NoError(t, cfg.Validate("seed-demo"))
}
