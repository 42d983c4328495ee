// internal/domain/cart/redis_storage.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const versionSuffix = ":version"

// RedisStorage keeps each cart blob in a Redis string with a sibling
// version counter used for optimistic concurrency
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates a Redis-backed storage. A zero ttl keeps carts forever.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, int64, error) {
	vals, err := s.client.MGet(ctx, key, key+versionSuffix).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load cart %s: %w", key, err)
	}

	version, err := parseVersion(vals[1])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load cart %s: %w", key, err)
	}

	var blob []byte
	if raw, ok := vals[0].(string); ok {
		blob = []byte(raw)
	}
	return blob, version, nil
}

func (s *RedisStorage) Save(ctx context.Context, key string, blob []byte, expectedVersion int64) (int64, error) {
	versionKey := key + versionSuffix
	var newVersion int64

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != expectedVersion {
			return ErrVersionConflict
		}

		newVersion = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, blob, s.ttl)
			pipe.Set(ctx, versionKey, newVersion, s.ttl)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, versionKey)
	switch {
	case err == nil:
		return newVersion, nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, ErrVersionConflict
	default:
		return 0, fmt.Errorf("failed to save cart %s: %w", key, err)
	}
}

// Delete drops the blob and bumps the version so that writers holding a
// pre-clear version fail their next Save
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	versionKey := key + versionSuffix

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Incr(ctx, versionKey)
		if s.ttl > 0 {
			pipe.Expire(ctx, versionKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", key, err)
	}
	return nil
}

func parseVersion(v interface{}) (int64, error) {
	switch raw := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cart version %q: %w", raw, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected cart version type %T", v)
	}
}
