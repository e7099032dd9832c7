// Package auth verifies session tokens issued by the delegated auth
// provider. This service never issues production tokens itself; it only
// validates them against the shared HS256 secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSecret is returned when the session secret is empty.
var ErrMissingSecret = errors.New("session token secret is required")

// Claims are the session claims the auth provider embeds in tokens.
// Subject carries the account SID.
type Claims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// AccountSID returns the account the token was issued for.
func (c *Claims) AccountSID() string {
	return c.Subject
}

type SessionService struct {
	secret []byte
}

func NewSessionService(secret string) (*SessionService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &SessionService{secret: []byte(secret)}, nil
}

func (s *SessionService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}

	return claims, nil
}

// Issue signs a session token locally. Used by tests and development
// tooling; production tokens come from the auth provider.
func (s *SessionService) Issue(accountSID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountSID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
