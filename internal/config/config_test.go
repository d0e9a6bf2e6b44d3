package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"port": 9090,
		"database_url": "postgres://localhost/memoir",
		"model": "gemini-2.5-flash",
		"verbose": true
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/memoir", cfg.DatabaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestFromEnvFillsGapsOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINI_MODEL", "env-model")

	cfg := Config{APIKey: "explicit-key"}
	result := cfg.FromEnv()

	assert.Equal(t, "postgres://env/db", result.DatabaseURL)
	assert.Equal(t, "explicit-key", result.APIKey)
	assert.Equal(t, "env-model", result.Model)
}

func TestValidatePortRange(t *testing.T) {
	assert.NoError(t, (&Config{Port: 8080}).Validate())
	assert.NoError(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Port: -1}).Validate())
	assert.Error(t, (&Config{Port: 70000}).Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9090}
	merged := cfg.MergeWithDefaults(Config{
		Port:        8080,
		DatabaseURL: "postgres://default/db",
		Model:       "gemini-2.5-flash",
	})

	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "postgres://default/db", merged.DatabaseURL)
	assert.Equal(t, "gemini-2.5-flash", merged.Model)
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	_, err := NewJWTConfig()
	assert.Error(t, err, "missing secret must fail")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "24")
	cfg, err = NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = NewJWTConfig()
	assert.Error(t, err)
}

func TestNewPasswordConfig(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)

	t.Setenv("BCRYPT_COST", "9")
	_, err = NewPasswordConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "nope")
	_, err = NewPasswordConfig()
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, cfg.VerifyPassword("correct-horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong", hash))
}
