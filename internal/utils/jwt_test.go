package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secreto", 7, "Ana", "ana@example.com", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := ParseAccessToken("secreto", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "Ana", claims.Nombre)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secreto", 7, "Ana", "ana@example.com", 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("otro-secreto", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("secreto", 7, "Ana", "ana@example.com", -1)
	require.NoError(t, err)

	_, err = ParseAccessToken("secreto", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	ref, err := NewRefreshToken("refresco", 31, 60)
	require.NoError(t, err)

	uid, err := ParseRefreshToken("refresco", ref.Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(31), uid)
}

// Access and refresh tokens are signed with different secrets; one must
// never verify against the other's secret.
func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	ref, err := NewRefreshToken("refresco", 31, 60)
	require.NoError(t, err)

	_, err = ParseAccessToken("secreto", ref.Raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	_, err := ParseAccessToken("secreto", "no-es-un-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseRefreshToken("refresco", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashRefreshRaw(t *testing.T) {
	a := HashRefreshRaw("token-a")
	b := HashRefreshRaw("token-a")
	c := HashRefreshRaw("token-b")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // hex-encoded SHA-256
	assert.NotContains(t, a, "token-a")
}
