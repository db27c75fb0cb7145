package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "")
	t.Setenv("WORKFLOW_BATCH_CONCURRENCY", "")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 4, cfg.Workflow.BatchConcurrency)
	assert.Equal(t, time.Minute, cfg.Catalog.CacheTTL())
	assert.False(t, cfg.Bootstrap.Enabled())
}

func TestLoad_RefusesDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")

	t.Setenv("AUTH_JWT_SECRET", "a-real-production-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.IsProduction())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Auth:      AuthConfig{JWTSecret: "secret"},
		Workflow:  WorkflowConfig{BatchConcurrency: 0, BatchMaxItems: 10},
		Bootstrap: BootstrapConfig{AdminEmail: "root@example.com"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKFLOW_BATCH_CONCURRENCY")
	assert.Contains(t, err.Error(), "BOOTSTRAP_ADMIN_PASSWORD")

	cfg.Workflow.BatchConcurrency = 2
	cfg.Bootstrap.AdminPassword = "long-enough"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Bootstrap.Enabled())
}
