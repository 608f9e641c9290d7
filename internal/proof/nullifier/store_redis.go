package nullifier

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "facegate/pkg/domain-errors"
)

// RedisStore shares nullifier bindings across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl keeps bindings forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Record(ctx context.Context, nullifier int64, subject string) (bool, string, error) {
	k := key(nullifier)
	ok, err := s.client.SetNX(ctx, k, subject, s.ttl).Result()
	if err != nil {
		return false, "", dErrors.Wrap(err, dErrors.CodeUnavailable, "nullifier store unavailable")
	}
	if ok {
		return true, subject, nil
	}
	existing, err := s.client.Get(ctx, k).Result()
	if err != nil && err != redis.Nil {
		return false, "", dErrors.Wrap(err, dErrors.CodeUnavailable, "nullifier store unavailable")
	}
	return false, existing, nil
}
