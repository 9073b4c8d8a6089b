// Package history keeps a capped log of resolved rounds in Redis.
//
// The log is write-mostly: the session never reads it back, so a restarted
// process always begins with an empty lobby.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"impostor/internal/domain"
)

var (
	ErrNilClient        = errors.New("nil redis client")
	ErrStoreUnavailable = errors.New("history store unavailable")
)

// DefaultLimit is how many outcomes are kept when no limit is configured
const DefaultLimit = 50

// Store records outcomes in a Redis list, newest first
type Store struct {
	redis  redis.UniversalClient
	prefix string
	limit  int64
}

// NewStore creates a store writing under prefix
func NewStore(redisClient redis.UniversalClient, prefix string, limit int) (*Store, error) {
	if redisClient == nil {
		return nil, ErrNilClient
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if prefix == "" {
		prefix = "impostor"
	}

	return &Store{
		redis:  redisClient,
		prefix: prefix,
		limit:  int64(limit),
	}, nil
}

func (s *Store) key() string {
	return s.prefix + ":outcomes"
}

// Record implements app.OutcomeSink
func (s *Store) Record(ctx context.Context, outcome domain.Outcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, s.key(), data)
	pipe.LTrim(ctx, s.key(), 0, s.limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Recent returns up to n outcomes, newest first
func (s *Store) Recent(ctx context.Context, n int) ([]domain.Outcome, error) {
	if n <= 0 || int64(n) > s.limit {
		n = int(s.limit)
	}

	raw, err := s.redis.LRange(ctx, s.key(), 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	outcomes := make([]domain.Outcome, 0, len(raw))
	for _, item := range raw {
		var outcome domain.Outcome
		if err := json.Unmarshal([]byte(item), &outcome); err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}
