package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test's duration.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Development_AcceptsDefaultSigningKey(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "development",
		"SESSION_SIGNING_KEY": "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "change-this-to-a-secure-secret", cfg.SessionSigningKey)
}

func TestLoad_Production_RejectsDefaultSigningKey(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"SESSION_SIGNING_KEY": "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SIGNING_KEY must be explicitly set")
}

func TestLoad_Production_RejectsShortSigningKey(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"SESSION_SIGNING_KEY": "short-but-not-default-key",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SIGNING_KEY must be at least 32 characters")
}

func TestLoad_Production_AcceptsStrongSigningKey(t *testing.T) {
	strongKey := "this-is-a-very-secure-signing-key-for-production-1234"
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"SESSION_SIGNING_KEY": strongKey,
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, strongKey, cfg.SessionSigningKey)
}

func TestLoad_Production_SigningKeyBoundary(t *testing.T) {
	// 31 characters is rejected, 32 accepted.
	short := "abcdefghijklmnopqrstuvwxyz12345"
	require.Len(t, short, 31)

	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"SESSION_SIGNING_KEY": short,
	})
	_, err := Load()
	assert.Error(t, err)

	exact := short + "6"
	require.Len(t, exact, 32)

	t.Setenv("SESSION_SIGNING_KEY", exact)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, exact, cfg.SessionSigningKey)
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:9099", cfg.ProviderBaseURL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 300, cfg.UserCacheTTLSecs)
}

func TestLoad_KafkaBrokerList(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":   "development",
		"KAFKA_BROKERS": "broker-1:9092,broker-2:9092",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}
