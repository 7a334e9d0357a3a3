package database

import (
	"context"
	"fmt"
	"hortifood/pkg/config"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the session store described by cfg.Redis.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	return OpenRedis(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.RedisHost, cfg.Redis.RedisPort),
		Password: cfg.Redis.RedisPassword,
		DB:       cfg.Redis.RedisDB,
	})
}

// OpenRedis fills in pool and timeout settings left unset in opts and checks
// the server answers before returning the client.
func OpenRedis(opts *redis.Options) (*redis.Client, error) {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
