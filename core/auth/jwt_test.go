package auth

import (
	"testing"
	"time"

	"discofm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.GenerateToken("user-123", model.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestParseTokenWrongSecret(t *testing.T) {
	manager := NewManager("secret-a", time.Hour)
	other := NewManager("secret-b", time.Hour)

	token, err := manager.GenerateToken("user-123", model.RoleUser)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken("user-123", model.RoleUser)
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	_, err := manager.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestNewManagerDefaultExpiry(t *testing.T) {
	manager := NewManager("test-secret", 0)

	token, err := manager.GenerateToken("user-123", model.RoleUser)
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 23*time.Hour)
	assert.LessOrEqual(t, remaining, 24*time.Hour)
}
