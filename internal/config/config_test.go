package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsYEntorno(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("META_VIDA_DEFAULT", "15000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "secreto", cfg.JWTSecret)
	assert.Equal(t, 15000.0, cfg.MetaVidaDefault)
	assert.Equal(t, 24, cfg.JWTRefreshHours)
	assert.Equal(t, 300, cfg.CatalogCacheTTLSeconds)
	assert.False(t, cfg.IsProduction())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://crm.example.com, ,https://admin.example.com "}
	assert.Equal(t, []string{"https://crm.example.com", "https://admin.example.com"}, cfg.AllowedOrigins())

	assert.Nil(t, (&Config{}).AllowedOrigins())
}
