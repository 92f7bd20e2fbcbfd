package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/internal/config"
)

func required() map[string]string {
	return map[string]string{
		"DATABASE_CONN_URL": "postgres://localhost/inkwell",
		"JWT_SECRET":        "secret",
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(required())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, config.BackendMemory, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CategoryCacheTTL)
	assert.Equal(t, 720*time.Hour, cfg.ArticleRetention)

	assert.Equal(t, "inkwell", cfg.JWT.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)

	assert.Equal(t, config.BackendMemory, cfg.Quota.Backend)
	assert.EqualValues(t, 1000, cfg.Quota.DailyLimit)
	assert.True(t, cfg.Quota.FailOpen)
	assert.Equal(t, 60, cfg.Quota.ThrottlePerMinute)
	assert.Equal(t, time.Local, cfg.Quota.Location())
	assert.False(t, cfg.UsesRedis())

	assert.Equal(t, "postgres://localhost/inkwell", cfg.DB.ConnectionString)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	vars := required()
	vars["QUOTA_BACKEND"] = "redis"
	vars["REDIS_URL"] = "redis://localhost:6379/0"
	vars["QUOTA_TIMEZONE"] = "Europe/Berlin"
	vars["QUOTA_DAILY_LIMIT"] = "3"
	vars["CORS_ALLOWED_ORIGINS"] = "https://a.example,https://b.example"

	cfg, err := config.Parse(vars)
	require.NoError(t, err)
	assert.True(t, cfg.UsesRedis())
	assert.EqualValues(t, 3, cfg.Quota.DailyLimit)
	assert.Equal(t, "Europe/Berlin", cfg.Quota.Location().String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  map[string]string
		want error
	}{
		{name: "missing secret", set: map[string]string{"JWT_SECRET": ""}, want: config.ErrParse},
		{name: "unknown quota backend", set: map[string]string{"QUOTA_BACKEND": "etcd"}, want: config.ErrInvalidConfig},
		{name: "postgres cache", set: map[string]string{"CACHE_BACKEND": "postgres"}, want: config.ErrInvalidConfig},
		{name: "redis without url", set: map[string]string{"CACHE_BACKEND": "redis"}, want: config.ErrInvalidConfig},
		{name: "bad timezone", set: map[string]string{"QUOTA_TIMEZONE": "Mars/Olympus"}, want: config.ErrInvalidConfig},
		{name: "negative limit", set: map[string]string{"QUOTA_DAILY_LIMIT": "-1"}, want: config.ErrInvalidConfig},
		{name: "bad duration", set: map[string]string{"JWT_TTL": "soon"}, want: config.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vars := required()
			for k, v := range tt.set {
				if v == "" {
					delete(vars, k)
					continue
				}
				vars[k] = v
			}
			_, err := config.Parse(vars)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_CONN_URL=postgres://file/db\nJWT_SECRET=from-file\nHTTP_ADDR=:9999\n"), 0o600))

	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("DATABASE_CONN_URL", "")
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("DATABASE_CONN_URL"))
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := config.Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, ":7000", cfg.HTTPAddr, "process environment wins")
}
