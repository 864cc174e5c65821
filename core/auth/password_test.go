package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	h1, err := HashPassword("password")
	require.NoError(t, err)
	h2, err := HashPassword("password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordBadHash(t *testing.T) {
	assert.False(t, VerifyPassword("password", "not-a-bcrypt-hash"))
}
