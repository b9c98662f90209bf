package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
)

var (
	mu        sync.RWMutex
	client    *redis.Client
	available bool
)

// SetupCache connects to the Redis/Dragonfly cache. An unreachable cache is
// logged; callers check Available before relying on it.
func SetupCache() *redis.Client {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pong, err := c.Ping(ctx).Result()
	if err != nil {
		logger.L().Warn("could not connect to cache", zap.String("addr", c.Options().Addr), zap.Error(err))
	} else {
		logger.L().Info("connected to cache", zap.String("addr", c.Options().Addr), zap.String("reply", pong))
	}

	mu.Lock()
	client = c
	available = err == nil
	mu.Unlock()
	return c
}

// SetClient installs an externally built client, mainly for tests.
func SetClient(c *redis.Client, reachable bool) {
	mu.Lock()
	client = c
	available = reachable
	mu.Unlock()
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	mu.RLock()
	c := client
	mu.RUnlock()
	if c == nil {
		return SetupCache()
	}
	return c
}

// Available reports whether the last connection attempt succeeded.
func Available() bool {
	mu.RLock()
	defer mu.RUnlock()
	return client != nil && available
}
