package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator(
		"access-secret", "refresh-secret",
		"venuebook", "venuebook",
		time.Hour, 24*time.Hour,
	)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	a := newTestAuthenticator()

	access, refresh, err := a.GenerateTokens(42, "owner")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	token, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "owner", claims["role"])

	refreshToken, err := a.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshToken.Valid)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	a := newTestAuthenticator()
	other := NewJWTAuthenticator("different", "different", "venuebook", "venuebook", time.Hour, time.Hour)

	access, _, err := a.GenerateTokens(1, "customer")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestRefreshTokenNotValidAsAccessToken(t *testing.T) {
	a := newTestAuthenticator()

	_, refresh, err := a.GenerateTokens(1, "customer")
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err, "tokens signed with the refresh secret must not pass access validation")
}
