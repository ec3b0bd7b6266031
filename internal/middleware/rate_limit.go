package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/pages-api/internal/config"
	"github.com/deppfellow/pages-api/internal/errs"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	rateLimitWindow     = time.Minute
	rateLimitKeyPrefix  = "pages:ratelimit:"
	rateLimitRedisCheck = 250 * time.Millisecond
)

// RateLimitMiddleware throttles requests per client IP.
//
// With Redis configured the counters live in Redis (fixed one minute
// windows shared by every instance); otherwise each instance keeps an
// in-memory token bucket.
type RateLimitMiddleware struct {
	server *server.Server
	store  middleware.RateLimiterStore
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit
	if cfg == nil {
		cfg = config.DefaultRateLimitConfig()
	}

	var store middleware.RateLimiterStore
	if s.Redis != nil {
		store = NewRedisRateLimitStore(s.Redis, cfg, s.Logger)
	} else {
		store = NewMemoryRateLimitStore(cfg)
	}

	return &RateLimitMiddleware{
		server: s,
		store:  store,
	}
}

// NewMemoryRateLimitStore builds Echo's token bucket store from cfg.
func NewMemoryRateLimitStore(cfg *config.RateLimitConfig) middleware.RateLimiterStore {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.RequestsPerMinute) / rateLimitWindow.Seconds()),
		Burst:     burst,
		ExpiresIn: 3 * rateLimitWindow,
	})
}

// Limit returns the Echo middleware. It is a pass-through when rate
// limiting is disabled.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	if cfg := r.server.Config.RateLimit; cfg != nil && !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewInternalServerError()
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			return errs.NewTooManyRequestsError()
		},
	})
}

// RecordRateLimitHit reports a throttled request to New Relic, if enabled.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimitStore counts requests per identifier in fixed windows.
type RedisRateLimitStore struct {
	client *redis.Client
	limit  int64
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRedisRateLimitStore(client *redis.Client, cfg *config.RateLimitConfig, logger *zerolog.Logger) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client: client,
		limit:  int64(cfg.RequestsPerMinute + cfg.Burst),
		logger: logger,
		now:    time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
//
// Redis failures let the request through; they are logged, not surfaced.
func (s *RedisRateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitRedisCheck)
	defer cancel()

	window := s.now().Truncate(rateLimitWindow).Unix()
	key := fmt.Sprintf("%s%s:%d", rateLimitKeyPrefix, identifier, window)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rateLimitWindow+time.Second)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("identifier", identifier).Msg("rate limit store unavailable")
		return true, nil
	}

	return incr.Val() <= s.limit, nil
}
