package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per collection.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore stores documents under "<prefix>:<collection>".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ledger"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	doc, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrStorage, name, err)
	}
	return doc, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, doc []byte) error {
	if err := s.client.Set(ctx, s.key(name), doc, 0).Err(); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStorage, name, err)
	}
	return nil
}
