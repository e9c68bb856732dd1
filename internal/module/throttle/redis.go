package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const redisKeyPrefix = "throttle:"

// RedisStore is a fixed-window counter shared across server instances.
// Redis failures fail open: a throttled endpoint stays reachable when the
// counter backend is down, and a circuit breaker stops hammering Redis
// while it is unhealthy.
type RedisStore struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[Decision]
	logger  *zap.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient, logger *zap.Logger) *RedisStore {
	settings := gobreaker.Settings{
		Name:        "throttle-redis",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &RedisStore{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[Decision](settings),
		logger:  logger,
	}
}

// Attempt implements Store. The window starts at the first attempt for the
// key and expires as a whole; Redis evicts the counter itself, so no sweep
// is needed.
func (s *RedisStore) Attempt(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	d, err := s.breaker.Execute(func() (Decision, error) {
		return s.attempt(ctx, key, limit, window)
	})
	if err != nil {
		s.logger.Warn("throttle backend unavailable, failing open",
			zap.String("key", key),
			zap.Error(err),
		)
		return Decision{Allowed: true, Remaining: limit, RetryAfter: window}, nil
	}
	return d, nil
}

func (s *RedisStore) attempt(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	fullKey := redisKeyPrefix + key

	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, fullKey, window).Err(); err != nil {
			return Decision{}, err
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:    count <= int64(limit),
		Remaining:  remaining,
		RetryAfter: window,
	}, nil
}

var _ Store = (*RedisStore)(nil)
