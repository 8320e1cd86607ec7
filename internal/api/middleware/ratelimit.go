package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lapakkirim/backend/pkg/errors"
	pkgredis "github.com/lapakkirim/backend/pkg/redis"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Limiter       *pkgredis.RateLimiter
	MaxRequests   int64
	WindowSeconds int64
	KeyPrefix     string
}

// RateLimit creates rate limiting middleware, keyed by authenticated user
// when available and falling back to client IP.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(c *fiber.Ctx) error {
		var identifier string
		if user := GetUser(c); user != nil {
			identifier = fmt.Sprintf("user:%s", user.ID)
		} else {
			identifier = fmt.Sprintf("ip:%s", c.IP())
		}
		key := fmt.Sprintf("%s:%s", cfg.KeyPrefix, identifier)

		allowed, remaining, resetAt, err := cfg.Limiter.Allow(c.Context(), key, cfg.MaxRequests, window)
		if err != nil {
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(cfg.MaxRequests, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":      "error",
				"message":     errors.ErrTooManyRequests.Error(),
				"retry_after": cfg.WindowSeconds,
			})
		}
		return c.Next()
	}
}
