// Package auth issues and validates the API's bearer tokens and hashes
// passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jonboulle/clockwork"
)

// Token validation failures. The messages are returned to API clients as-is.
var (
	ErrMissingToken = errors.New("Missing token")
	ErrTokenExpired = errors.New("Token expired")
	ErrInvalidToken = errors.New("Invalid token")
)

// Claims identify the logged-in user.
type Claims struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Address  string `json:"address"`
	jwt.StandardClaims
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret   []byte
	lifetime time.Duration
	clock    clockwork.Clock
}

// NewTokens creates a Tokens. A nil clock uses the real clock.
func NewTokens(secret string, lifetime time.Duration, clock clockwork.Clock) *Tokens {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tokens{secret: []byte(secret), lifetime: lifetime, clock: clock}
}

// Issue returns a signed token for the user.
func (t *Tokens) Issue(id int, username, address string) (string, error) {
	now := t.clock.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		ID:       id,
		Username: username,
		Address:  address,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(t.lifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a raw token and returns its claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseBearer validates an Authorization header of the form "Bearer <token>".
func (t *Tokens) ParseBearer(header string) (*Claims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}
	return t.Parse(strings.TrimSpace(raw))
}
