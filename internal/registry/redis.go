package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

const redisPingTimeout = 5 * time.Second

// RedisBackend stores each interface as a hash keyed by prefix+interface.
// Values are JSON encoded.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures a Redis connection.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if opts.Addr == "" {
		return nil, errors.ConfigError("redis address is required").Build()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "redis ping failed").
			Retryable().
			WithContext("addr", opts.Addr).
			Build()
	}
	return &RedisBackend{client: client, prefix: opts.KeyPrefix}, nil
}

// NewRedisRegistry returns a Registry backed by Redis.
func NewRedisRegistry(ctx context.Context, opts RedisOptions) (*Store, *RedisBackend, error) {
	backend, err := NewRedisBackend(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return NewStore(backend), backend, nil
}

func (r *RedisBackend) key(iface string) string { return r.prefix + iface }

func (r *RedisBackend) Load(ctx context.Context, iface, name string) (any, bool, error) {
	raw, err := r.client.HGet(ctx, r.key(iface), name).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryRegistry, "redis read failed").
			Retryable().
			WithContext("record", name).
			Build()
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryRegistry, "decode redis value").
			WithContext("record", name).
			Build()
	}
	return v, true, nil
}

func (r *RedisBackend) Save(ctx context.Context, iface, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode redis value").Build()
	}
	if err := r.client.HSet(ctx, r.key(iface), name, string(data)).Err(); err != nil {
		return errors.WrapError(err, errors.CategoryRegistry, "redis write failed").
			Retryable().
			WithContext("record", name).
			Build()
	}
	return nil
}

// Close closes the client.
func (r *RedisBackend) Close() error { return r.client.Close() }
