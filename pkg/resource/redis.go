package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGetter is the part of a go-redis client the Redis loader uses.
// *redis.Client, *redis.ClusterClient and *redis.Ring all satisfy it.
type RedisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisLoader reads the string stored under key on every call.
func RedisLoader(client RedisGetter, key string) Supplier[string] {
	return func(ctx context.Context) (string, error) {
		v, err := client.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			return "", fmt.Errorf("%w: redis key %q", ErrNotFound, key)
		case err != nil:
			return "", fmt.Errorf("%w: redis key %q: %w", ErrLoadFailed, key, err)
		}
		return v, nil
	}
}

// RedisConfig describes the Redis server holding flag configuration.
type RedisConfig struct {
	URL            string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Key            string        `env:"REDIS_KEY" envDefault:"featurekit:flags"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnectRedis opens a client for cfg.URL and pings it until it answers,
// retrying up to RetryAttempts times within ConnectTimeout.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %w", ErrInvalidRedisConfig, err)
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	attempts := max(cfg.RetryAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = client.Ping(ctx).Err()
		if err == nil {
			return client, nil
		}
		if attempt >= attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, err)
}
