package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

const redisPingTimeout = 2 * time.Second

// redisOptions builds client options from the environment. REDIS_URL wins
// when set; otherwise REDIS_ADDR, REDIS_PASS and REDIS_DB are consulted with
// a localhost default.
func redisOptions() (*redis.Options, error) {
	if rawURL := os.Getenv("REDIS_URL"); rawURL != "" {
		return redis.ParseURL(rawURL)
	}

	opts := &redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASS"),
	}
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		n, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", dbStr, err)
		}
		opts.DB = n
	}
	return opts, nil
}

// ConnectRedis initializes the process-wide Redis client. The client is
// optional: session mirroring and rate limiting degrade gracefully when it
// stays nil. In the test environment no connection is attempted.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		if cfg := LoadConfig(); cfg != nil && cfg.AppEnv == "test" {
			return
		}

		var opts *redis.Options
		opts, err = redisOptions()
		if err != nil {
			return
		}

		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
			err = fmt.Errorf("redis ping failed: %w", pingErr)
			return
		}

		redisClient = rdb
		log.Printf("Connected to Redis at %s", opts.Addr)
	})
	return redisClient, err
}

// GetRedisClient returns the shared Redis client, or nil when Redis was
// never connected.
func GetRedisClient() *redis.Client {
	return redisClient
}
