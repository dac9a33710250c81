package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":1111")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRATION", "45m")
	t.Setenv("BCRYPT_COST", "8")
	t.Setenv("ALLOW_BIOMETRIC_OVERWRITE", "false")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, ":1111", cfg.EndpointAddrHTTP)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 8, cfg.PasswordHashCost)
	assert.False(t, cfg.AllowBiometricOverwrite)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "whenever")

	require.Error(t, ApplyEnv(&Config{}))
}
