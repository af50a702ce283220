package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-tombola/internal/utils"
)

var (
	ErrNotAllowed      = errors.New("user is not on the panel allow-list")
	ErrCodeInvalid     = errors.New("login code is invalid")
	ErrCodeExpired     = errors.New("login code has expired")
	ErrTooManyAttempts = errors.New("too many failed attempts, request a new code")
)

// CodeStore keeps short-lived login codes in Redis. A code survives its
// TTL or MaxAttempts failed verifications, whichever comes first, and is
// burned on first successful use.
type CodeStore struct {
	Redis       *redis.Client
	TTL         time.Duration
	MaxAttempts int
}

func codeKey(userID string) string     { return "login_code:" + userID }
func attemptsKey(userID string) string { return "login_attempts:" + userID }

// Issue generates a fresh 6-digit code for the user, replacing any
// outstanding one and resetting the attempt counter.
func (c *CodeStore) Issue(ctx context.Context, userID string) (string, error) {
	code := utils.NewLoginCode()

	pipe := c.Redis.TxPipeline()
	pipe.Set(ctx, codeKey(userID), code, c.TTL)
	pipe.Set(ctx, attemptsKey(userID), 0, c.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store login code: %w", err)
	}
	return code, nil
}

// Verify checks a submitted code. Every wrong guess counts against the
// attempt cap; hitting the cap burns the code immediately.
func (c *CodeStore) Verify(ctx context.Context, userID, code string) error {
	stored, err := c.Redis.Get(ctx, codeKey(userID)).Result()
	if err == redis.Nil {
		return ErrCodeExpired
	}
	if err != nil {
		return fmt.Errorf("failed to read login code: %w", err)
	}

	attempts, err := c.Redis.Incr(ctx, attemptsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}
	if attempts > int64(c.MaxAttempts) {
		c.burn(ctx, userID)
		return ErrTooManyAttempts
	}

	if stored != code {
		if attempts == int64(c.MaxAttempts) {
			c.burn(ctx, userID)
			return ErrTooManyAttempts
		}
		return ErrCodeInvalid
	}

	c.burn(ctx, userID)
	return nil
}

func (c *CodeStore) burn(ctx context.Context, userID string) {
	c.Redis.Del(ctx, codeKey(userID), attemptsKey(userID))
}
