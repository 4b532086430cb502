package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("secreta123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secreta123", hash)

	assert.True(t, VerifyPassword(hash, "secreta123"))
	assert.False(t, VerifyPassword(hash, "otra"))
	assert.False(t, VerifyPassword("", "secreta123"))
}

func TestPasswordHashesAreSalted(t *testing.T) {
	a, err := HashPassword("secreta123", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("secreta123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
