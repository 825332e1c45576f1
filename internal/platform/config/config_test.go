package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "CLIENT_URL", "TRUSTED_PROXIES", "JWT_SECRET", "BCRYPT_COST", "RUN_MIGRATIONS",
	"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "USER_CACHE_TTL",
	"AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW",
}

// clearEnv は設定キーを空にし、テスト終了時に元へ戻します。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.Nil(t, cfg.TrustedProxies, "no proxy is trusted by default")
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.RunMigrations)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
	assert.Equal(t, "5432", cfg.DB.Port)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("CLIENT_URL", "https://app.example.com")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("AUTH_RATE_LIMIT", "0")
	t.Setenv("AUTH_RATE_WINDOW", "10m")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/todo")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 192.168.0.0/16,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://app.example.com", cfg.ClientURL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	assert.Equal(t, 0, cfg.AuthRateLimit)
	assert.Equal(t, 10*time.Minute, cfg.AuthRateWindow)
	assert.Equal(t, "postgres://u:p@db/todo", cfg.DB.URL)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "JWT_SECRET未設定", env: map[string]string{}},
		{name: "BCRYPT_COSTが数値でない", env: map[string]string{"JWT_SECRET": "s", "BCRYPT_COST": "ten"}},
		{name: "AUTH_RATE_LIMITが負", env: map[string]string{"JWT_SECRET": "s", "AUTH_RATE_LIMIT": "-1"}},
		{name: "USER_CACHE_TTLが不正", env: map[string]string{"JWT_SECRET": "s", "USER_CACHE_TTL": "soon"}},
		{name: "AUTH_RATE_WINDOWが0", env: map[string]string{"JWT_SECRET": "s", "AUTH_RATE_WINDOW": "0s"}},
		{name: "TRUSTED_PROXIESが不正", env: map[string]string{"JWT_SECRET": "s", "TRUSTED_PROXIES": "10.0.0.1,proxy.local"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nPORT=7000\n"), 0o600))
	t.Setenv("PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9000", cfg.Port)
}
