package middleware

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen falls back to an in-process limiter if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// rateLimitBypassed reports whether the environment disables rate limiting
// so test and load workflows are not throttled.
func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "test", "stress":
		return true
	}
	return false
}

// RateLimiter counts requests per resource and caller in Redis, with a
// token bucket per key as the in-process fallback.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	policy FailPolicy

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter returns a limiter allowing limit requests per window.
// A nil rdb uses the in-process limiter only.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		policy: policy,
		local:  make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the caller id may hit resource again.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	if rateLimitBypassed() {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	if l.rdb != nil {
		cnt, err := l.rdb.Incr(ctx, key).Result()
		if err == nil {
			if cnt == 1 {
				l.rdb.Expire(ctx, key, l.window)
			}
			return cnt <= int64(l.limit), nil
		}
		observability.RedisErrorRate.WithLabelValues("rate_limit").Inc()
		if l.policy == FailClosed {
			return false, err
		}
	}
	return l.localLimiter(key).Allow(), nil
}

func (l *RateLimiter) localLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.local[key]
	if !ok {
		every := l.window / time.Duration(max(l.limit, 1))
		lim = rate.NewLimiter(rate.Every(every), l.limit)
		l.local[key] = lim
	}
	return lim
}

// Handler returns a Fiber middleware keyed by authenticated user id, or by
// remote IP for anonymous callers. name overrides the request path as the
// resource identifier.
func (l *RateLimiter) Handler(name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid, ok := UserID(c); ok {
			id = fmt.Sprintf("user:%d", uid)
		} else {
			id = "ip:" + c.IP()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := l.Allow(c.UserContext(), resource, id)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"resource", resource, "error", err)
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				&models.AppError{Code: "RATE_LIMIT_UNAVAILABLE", Message: "rate limit unavailable"})
		}
		if !allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "rate limit exceeded"})
		}
		return c.Next()
	}
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`
// with the FailOpen policy.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return NewRateLimiter(rdb, limit, window, FailOpen).Handler(name...)
}
