package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	// Host defaults to localhost.
	Host string

	// Port defaults to 6379.
	Port int

	// Password is optional.
	Password string

	// DB selects the redis database, default 0.
	DB int

	// PoolSize caps connections, default 10.
	PoolSize int

	// Options carries the shared cache options.
	Options *Options
}

// RedisProvider stores entries in redis. Shared totals survive process
// restarts and are visible to every instance behind a load balancer.
type RedisProvider struct {
	client *redis.Client
	opts   *Options
}

// NewRedisProvider connects to redis and verifies the connection with a
// ping before returning.
func NewRedisProvider(config *RedisConfig) (*RedisProvider, error) {
	if config == nil {
		config = &RedisConfig{}
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 6379
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	if config.Options == nil {
		config.Options = &Options{DefaultTTL: 5 * time.Minute}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisProvider{client: client, opts: config.Options}, nil
}

func (r *RedisProvider) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *RedisProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.opts.DefaultTTL
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisProvider) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// DeleteByPattern scans for keys matching the glob pattern and deletes
// them in batches, so a large keyspace never blocks the server the way
// KEYS would.
func (r *RedisProvider) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := r.client.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return flush()
}

func (r *RedisProvider) Clear(ctx context.Context) error {
	return r.client.FlushDB(ctx).Err()
}

func (r *RedisProvider) Close() error {
	return r.client.Close()
}
