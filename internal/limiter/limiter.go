package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("too many connection attempts")
	ErrRedisUnavailable = errors.New("limiter redis unavailable")
)

type Config struct {
	Prefix      string
	MaxAttempts int
	Window      time.Duration
}

// JoinLimiter throttles websocket connection attempts per remote address using
// a fixed window counter. A nil limiter allows everything.
type JoinLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewJoinLimiter(redisClient redis.UniversalClient, cfg Config) *JoinLimiter {
	if redisClient == nil || cfg.MaxAttempts <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "impostor"
	}

	return &JoinLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

func (l *JoinLimiter) Allow(ctx context.Context, remoteAddr string) error {
	if l == nil || l.redis == nil || remoteAddr == "" {
		return nil
	}

	key := l.key(remoteAddr)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *JoinLimiter) key(remoteAddr string) string {
	return l.config.Prefix + ":join:" + remoteAddr
}
