package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// redisStore backs a queue route with a Redis list per key.
type redisStore struct {
	client redis.UniversalClient
}

func openRedisStore(ctx context.Context, target string) (*redisStore, error) {
	opts, err := redis.ParseURL(target)
	if err != nil {
		return nil, fmt.Errorf("invalid redis target: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{client: client}, nil
}

func (s *redisStore) Push(ctx context.Context, key, value string) error {
	return s.client.RPush(ctx, key, value).Err()
}

func (s *redisStore) Pop(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.LPop(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, err
	}

	return value, true, nil
}

func (s *redisStore) Len(ctx context.Context, key string) (int64, error) {
	return s.client.LLen(ctx, key).Result()
}

func (s *redisStore) Trim(ctx context.Context, key string, max int64) error {
	// Keep the most recent max entries; LTRIM with a negative start drops
	// from the head, which is the oldest end of the list.
	return s.client.LTrim(ctx, key, -max, -1).Err()
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
