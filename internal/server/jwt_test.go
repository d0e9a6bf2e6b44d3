package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maren/memoir-builder/internal/config"
)

func testJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
}

func TestJWTRoundTrip(t *testing.T) {
	service := testJWTService()
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := testJWTService().GenerateToken(uuid.New(), "ada@example.com")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "different-secret", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := testJWTService().ValidateToken("not.a.token")
	assert.Error(t, err)
}
