package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_STORE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "admin_session", cfg.Session.CookieName)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadTrimsBaseURL(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("API_BASE_URL", "https://api.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "etcd")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsDefaultSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	t.Setenv("APP_ENV", "staging")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultSessionSecret, cfg.Session.Secret)

	t.Setenv("APP_ENV", "staging")
	t.Setenv("SESSION_SECRET", "s3cret")
	_, err = Load()
	assert.NoError(t, err)
}

func TestRedisConnectTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, RedisConfig{}.ConnectTimeout())
	assert.Equal(t, 2*time.Second, RedisConfig{ConnectTimeoutSeconds: 2}.ConnectTimeout())
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
}
