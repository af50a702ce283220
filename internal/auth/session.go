package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrSessionRevoked = errors.New("session has been revoked")

// Sessions issues and verifies panel session tokens. Tokens are HMAC
// signed JWTs whose jti is mirrored in Redis, so a logout can revoke a
// session before its expiry.
type Sessions struct {
	Secret []byte
	TTL    time.Duration
	Redis  *redis.Client
}

func sessionKey(jti string) string { return "session:" + jti }

// Issue mints a session token for the user.
func (s *Sessions) Issue(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.Redis.Set(ctx, sessionKey(jti), userID, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to register session: %w", err)
	}
	return token, nil
}

// Verify validates the token signature and expiry, then checks the
// session is still registered. Returns the user ID.
func (s *Sessions) Verify(ctx context.Context, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid session claims")
	}

	if err := s.Redis.Get(ctx, sessionKey(claims.ID)).Err(); err == redis.Nil {
		return "", ErrSessionRevoked
	} else if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}
	return claims.Subject, nil
}

// Revoke drops the session registration so the token stops verifying.
func (s *Sessions) Revoke(ctx context.Context, tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}
	return s.Redis.Del(ctx, sessionKey(claims.ID)).Err()
}
