package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps records as plain Redis strings.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to the Redis server at addr and checks it answers.
func NewRedisStore(ctx context.Context, logger *zap.Logger, addr string) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if addr == "" {
		return nil, fmt.Errorf("redis storage needs an address")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not reach redis at %s: %w", addr, err)
	}

	logger.Info("redis storage ready",
		zap.String("op", "store.NewRedisStore"),
		zap.String("addr", addr),
	)
	return &RedisStore{client: rdb, logger: logger}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, r.wrap("read", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return r.wrap("write", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return r.wrap("delete", fmt.Sprint(keys), err)
	}
	return nil
}

// ReplaceAll runs every change inside one MULTI/EXEC transaction.
func (r *RedisStore) ReplaceAll(ctx context.Context, values map[string][]byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			if value == nil {
				pipe.Del(ctx, key)
				continue
			}
			pipe.Set(ctx, key, value, 0)
		}
		return nil
	})
	if err != nil {
		return r.wrap("replace", "records", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	err := r.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

func (r *RedisStore) wrap(action, key string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("failed to %s %s: %w", action, key, err)
}
