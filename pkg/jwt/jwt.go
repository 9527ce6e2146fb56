package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken token is malformed or signed with the wrong key
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken token signature is valid but the token has expired
	ErrExpiredToken = errors.New("expired token")
)

// UserClaims JWT payload carried by access tokens
type UserClaims struct {
	jwt.RegisteredClaims
	UserID   uint64 `json:"user_id"`
	Nickname string `json:"nickname,omitempty"`
}

// Manager creates and verifies HMAC-signed access tokens.
// Token issuance lives in the account service; Generate exists for
// development tooling and tests.
type Manager struct {
	secretKey []byte
	expiresIn time.Duration
}

// NewManager creates a new JWT Manager
func NewManager(secret string, expiresIn time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secret),
		expiresIn: expiresIn,
	}
}

// Generate signs a new access token for the given user
func (m *Manager) Generate(userID uint64, nickname string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
		UserID:   userID,
		Nickname: nickname,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify validates an access token and returns its claims
func (m *Manager) Verify(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
