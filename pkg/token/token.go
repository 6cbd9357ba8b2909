package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	mu        sync.RWMutex
	secretKey []byte
)

// ErrInvalidToken is returned for malformed, expired or foreign tokens.
var ErrInvalidToken = errors.New("token: invalid session token")

// Claims is the payload of a session token. Subject carries the username.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Username is the subject of the token.
func (c *Claims) Username() string {
	return c.Subject
}

// SetSecret installs the signing key. An empty secret generates a random
// 32 byte key, so sessions do not survive a restart.
func SetSecret(secret string) error {
	if secret != "" {
		mu.Lock()
		secretKey = []byte(secret)
		mu.Unlock()
		return nil
	}
	return GenerateSecretKey()
}

// GenerateSecretKey installs a cryptographically random 32 byte key.
func GenerateSecretKey() error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("token: generate secret: %w", err)
	}
	mu.Lock()
	secretKey = key
	mu.Unlock()
	return nil
}

func currentKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return secretKey
}

// GenerateToken signs a HS256 session token for username.
func GenerateToken(username, role string, ttl time.Duration) (string, time.Time, error) {
	key := currentKey()
	if len(key) == 0 {
		return "", time.Time{}, errors.New("token: secret not configured")
	}

	now := time.Now()
	exp := now.Add(ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return s, exp, nil
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(tokenStr string) (*Claims, error) {
	key := currentKey()
	if len(key) == 0 {
		return nil, ErrInvalidToken
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
