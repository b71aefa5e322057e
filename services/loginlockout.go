package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failKeyPrefix = "login:fails:"
	lockKeyPrefix = "login:lock:"

	// Counter lifetime; slightly longer than the longest lockout so the
	// count survives it.
	failWindow = 25 * time.Hour

	failsPerTier = 3
	maxLockout   = 24 * time.Hour
)

// LoginLockout counts failed sign-in attempts per username and locks the
// account in growing steps. State lives in redis, so restarting the service
// does not forgive an attacker and every replica sees the same counters.
type LoginLockout struct {
	rdb *redis.Client
}

func NewLoginLockout(rdb *redis.Client) *LoginLockout {
	return &LoginLockout{rdb: rdb}
}

// lockoutFor maps a cumulative fail count to a lockout length: 15 minutes
// after three fails, doubling every further three, capped at 24 hours.
func lockoutFor(fails int64) time.Duration {
	tier := fails / failsPerTier
	if tier <= 0 {
		return 0
	}
	if tier > 7 {
		return maxLockout
	}
	d := 15 * time.Minute * (1 << (tier - 1))
	if d > maxLockout {
		d = maxLockout
	}
	return d
}

// IsLocked reports whether a username is locked out, and for how many more
// seconds. Redis errors fail open; the bcrypt check still stands.
func (lo *LoginLockout) IsLocked(ctx context.Context, username string) (bool, int) {
	ttl, err := lo.rdb.TTL(ctx, lockKeyPrefix+username).Result()
	if err != nil || ttl <= 0 {
		return false, 0
	}
	return true, int(ttl.Seconds())
}

// RecordFailure bumps the fail counter and, on every third failure, locks
// the username for the tier's duration.
func (lo *LoginLockout) RecordFailure(ctx context.Context, username string) {
	failKey := failKeyPrefix + username

	fails, err := lo.rdb.Incr(ctx, failKey).Result()
	if err != nil {
		log.Printf("[Lockout] Counting failure for %s: %v", username, err)
		return
	}
	if err := lo.rdb.Expire(ctx, failKey, failWindow).Err(); err != nil {
		log.Printf("[Lockout] Setting counter TTL for %s: %v", username, err)
	}

	if fails%failsPerTier != 0 {
		return
	}

	d := lockoutFor(fails)
	if err := lo.rdb.Set(ctx, lockKeyPrefix+username, "1", d).Err(); err != nil {
		log.Printf("[Lockout] Locking %s: %v", username, err)
		return
	}
	log.Printf("[Lockout] %s locked for %s after %d failed attempts", username, d, fails)
}

// RecordSuccess clears the counter and any active lock for a username.
func (lo *LoginLockout) RecordSuccess(ctx context.Context, username string) {
	if err := lo.rdb.Del(ctx, failKeyPrefix+username, lockKeyPrefix+username).Err(); err != nil {
		log.Printf("[Lockout] Clearing state for %s: %v", username, err)
	}
}
