package middleware

import (
	"fmt"
	"time"

	"github.com/fintrack/fintrack/response"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

/* ========================================================================
 * Rate Limit Middleware
 * ========================================================================
 * Requests are limited per owner when authenticated, per client IP
 * otherwise. The counter lives in redis when a client is wired, so
 * the limit holds across instances; without redis it falls back to an
 * in-memory store.
 * ======================================================================== */

const (
	defaultRateLimit  = 100
	defaultRatePeriod = time.Minute
)

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Limit   int64         `yaml:"limit" mapstructure:"limit"`
	Period  time.Duration `yaml:"period" mapstructure:"period"`
}

// NewRateLimitMiddleware builds the rate limiting middleware. client
// may be nil.
func NewRateLimitMiddleware(cfg *RateLimitConfig, client *goredis.Client) (fiber.Handler, error) {
	if cfg == nil {
		cfg = &RateLimitConfig{}
	}

	rate := limiter.Rate{
		Limit:  cfg.Limit,
		Period: cfg.Period,
	}
	if rate.Limit <= 0 {
		rate.Limit = defaultRateLimit
	}
	if rate.Period <= 0 {
		rate.Period = defaultRatePeriod
	}

	var store limiter.Store
	if client != nil {
		s, err := redisstore.NewStore(client)
		if err != nil {
			return nil, err
		}
		store = s
	} else {
		store = memory.NewStore()
	}

	lim := limiter.New(store, rate)

	return func(c fiber.Ctx) error {
		if !cfg.Enabled {
			return c.Next()
		}

		lctx, err := lim.Get(c.Context(), rateLimitKey(c))
		if err != nil {
			return response.ErrorWithCode(c, fiber.StatusInternalServerError,
				fmt.Errorf("rate limit check failed: %w", err))
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))

		if lctx.Reached {
			return response.ErrorWithCode(c, fiber.StatusTooManyRequests,
				fmt.Errorf("too many requests"))
		}

		return c.Next()
	}, nil
}

func rateLimitKey(c fiber.Ctx) string {
	if claims, ok := ClaimsFromContext(c); ok {
		return "owner:" + claims.Owner
	}
	return "ip:" + c.IP()
}
