package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 24*time.Hour, cfg.InsightCacheTTL)
	assert.Equal(t, FeedModePostgres, cfg.FeedMode)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.TelegramEnabled())
}

func TestFromEnv_AIDisabledUntilConfigured(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AI_API_KEY", "key")
	for _, key := range []string{"AI_BASE_URL", "AI_MODEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.AIBaseURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.AIModel)
}

func TestFromEnv_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://appeals.example.com, ,https://admin.example.com")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "42")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://appeals.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TelegramEnabled())
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"store timeout": {"STORE_TIMEOUT", "soon"},
		"negative ttl":  {"SESSION_TTL", "-1h"},
		"feed mode":     {"FEED_MODE", "kafka"},
		"rate limit":    {"RATE_LIMIT_LIMIT", "ten"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "appeals")

	assert.Equal(t, "postgres://app:p%40ss@db:5432/appeals?sslmode=disable", getDatabaseURL())
}
