package auth

import (
	"fmt"
	"time"

	"discofm/model"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated user identity inside a token.
type Claims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies bearer tokens.
type Manager struct {
	secret []byte
	expiry time.Duration
}

// NewManager creates a token manager with the given signing secret and expiry.
func NewManager(secret string, expiry time.Duration) *Manager {
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), expiry: expiry}
}

// GenerateToken issues a signed, time-limited token for the given user.
func (m *Manager) GenerateToken(userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
