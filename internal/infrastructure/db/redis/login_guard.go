package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginGuard counts failed logins per username and locks the username out
// once the count reaches maxFailures. The counter expires lockout after the
// most recent failure.
// Key format: login_failures:<username>
type LoginGuard struct {
	client      redis.Cmdable
	maxFailures int64
	lockout     time.Duration
}

// NewLoginGuard wraps client. A non-positive maxFailures defaults to 5 and
// a non-positive lockout to 15 minutes.
func NewLoginGuard(client redis.Cmdable, maxFailures int, lockout time.Duration) *LoginGuard {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginGuard{client: client, maxFailures: int64(maxFailures), lockout: lockout}
}

// IsLocked reports whether username has reached the failure limit.
func (g *LoginGuard) IsLocked(ctx context.Context, username string) (bool, error) {
	n, err := g.client.Get(ctx, g.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login guard check: %w", err)
	}
	return n >= g.maxFailures, nil
}

// RecordFailure increments the counter and refreshes its expiry in one
// transaction.
func (g *LoginGuard) RecordFailure(ctx context.Context, username string) error {
	key := g.key(username)
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, g.lockout)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login guard record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, username string) error {
	if err := g.client.Del(ctx, g.key(username)).Err(); err != nil {
		return fmt.Errorf("login guard reset: %w", err)
	}
	return nil
}

func (g *LoginGuard) key(username string) string {
	return "login_failures:" + username
}
