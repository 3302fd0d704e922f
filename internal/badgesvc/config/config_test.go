package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "STORE_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASS",
		"DB_NAME", "DB_SSLMODE", "DB_MAX_CONNS", "DB_QUERY_TIMEOUT", "REQUEST_TIMEOUT",
		"RATE_LIMIT", "CORS_ALLOWED_ORIGINS", "LOG_DIR", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 300, cfg.RateLimit)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_QUERY_TIMEOUT", "250ms")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, int32(4), cfg.DB.MaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.DB.QueryTimeout)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PORT", "abc")
	t.Setenv("REQUEST_TIMEOUT", "-1s")

	cfg := Load()
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestDSN(t *testing.T) {
	c := DBConfig{
		Host:     "db",
		Port:     5432,
		User:     "badge",
		Password: "p@ss word",
		Name:     "badges",
		SSLMode:  "disable",
	}
	dsn := c.DSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://badge:"), dsn)
	assert.Contains(t, dsn, "@db:5432/badges?sslmode=disable")
	assert.NotContains(t, dsn, "p@ss word")

	red := c.Redacted()
	assert.NotContains(t, red, "word")
	assert.Contains(t, red, "xxxxx")

	c.URL = "postgres://u:p@elsewhere:1/x"
	require.Equal(t, "postgres://u:p@elsewhere:1/x", c.DSN())
}
