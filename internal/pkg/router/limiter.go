package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/cache"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
)

const defaultRateLimit = 120

// newAPILimiter limits API requests per IP and minute. Counters live in the
// cache (database 2) when it is reachable so that all instances share them.
func newAPILimiter() fiber.Handler {
	cfg := limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", defaultRateLimit),
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Rate limit exceeded",
			})
		},
	}
	if cfg.Max <= 0 {
		cfg.Max = defaultRateLimit
	}
	if storage := limiterStorage(); storage != nil {
		cfg.Storage = storage
	}
	return limiter.New(cfg)
}

func limiterStorage() fiber.Storage {
	if !cache.Available() {
		return nil
	}
	cacheClient := cache.GetClient()
	if cacheClient == nil {
		return nil
	}

	host := "localhost"
	port := 6379
	addr := cacheClient.Options().Addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: cacheClient.Options().Password,
		Database: 2,
		Reset:    false,
	})
}
