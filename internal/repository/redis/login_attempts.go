package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/project-planner/internal/core/port"
)

const loginAttemptKeyPrefix = "planner:login-attempts"

// LoginAttemptRepository stores per-IP login attempts in a Redis sorted set,
// scored by the attempt timestamp in nanoseconds.
type LoginAttemptRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLoginAttemptRepository wires a Redis-backed attempt store. Keys expire
// after ttl so idle IPs do not accumulate.
func NewLoginAttemptRepository(client *redis.Client, ttl time.Duration) *LoginAttemptRepository {
	return &LoginAttemptRepository{client: client, ttl: ttl}
}

// RecordAttempt appends the attempt and refreshes the key TTL.
func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, clientIP string, at time.Time) error {
	key := loginAttemptKey(clientIP)
	score := float64(at.UnixNano())

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: at.UnixNano()})
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// PruneBefore removes attempts strictly older than cutoff.
func (r *LoginAttemptRepository) PruneBefore(ctx context.Context, clientIP string, cutoff time.Time) error {
	threshold := strconv.FormatInt(cutoff.UnixNano()-1, 10)
	if err := r.client.ZRemRangeByScore(ctx, loginAttemptKey(clientIP), "-inf", threshold).Err(); err != nil {
		return fmt.Errorf("prune login attempts: %w", err)
	}
	return nil
}

// AttemptsSince counts attempts at or after cutoff. The window is bounded by
// the throttle limit, so fetching the members is cheap and yields the oldest
// attempt in the same round trip.
func (r *LoginAttemptRepository) AttemptsSince(ctx context.Context, clientIP string, cutoff time.Time) (int, time.Time, error) {
	members, err := r.client.ZRangeByScore(ctx, loginAttemptKey(clientIP), &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff.UnixNano(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("count login attempts: %w", err)
	}
	if len(members) == 0 {
		return 0, time.Time{}, nil
	}

	ts, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse login attempt timestamp: %w", err)
	}
	return len(members), time.Unix(0, ts), nil
}

func loginAttemptKey(clientIP string) string {
	return fmt.Sprintf("%s:%s", loginAttemptKeyPrefix, clientIP)
}

var _ port.LoginAttemptStore = (*LoginAttemptRepository)(nil)
