package middleware

import (
	"github.com/deppfellow/pages-api/internal/logger"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	// UserIDKey is the Echo context key holding the authenticated user id (int64).
	UserIDKey = "user_id"

	// LoggerKey is used as the key for storing the request-scoped logger.
	LoggerKey = "logger"
)

// ContextEnhancer is a middleware helper that enriches request context.
//
// It builds a request-scoped logger with useful fields like:
//   - request_id
//   - method, path, ip
//   - trace.id/span.id (if New Relic transaction exists)
//   - user_id (if auth middleware already ran)
//
// The logger is stored in Echo context and in the request's context.Context,
// where zerolog.Ctx finds it (repositories and the GORM logger use that).
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a new ContextEnhancer using the app Server container.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns an Echo middleware.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := GetRequestID(c)

			contextLogger := ce.server.Logger.With().
				Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Path()). // route template, e.g. /api/v1/pages/:page_id
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			if userID := GetUserID(c); userID != 0 {
				contextLogger = contextLogger.With().Int64("user_id", userID).Logger()
			}

			setLogger(c, contextLogger)

			return next(c)
		}
	}
}

// setLogger stores l as the request logger in both Echo context and the
// request's context.Context.
func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)

	req := c.Request()
	c.SetRequest(req.WithContext(l.WithContext(req.Context())))
}

// GetUserID returns the authenticated user id, or 0 when the request is anonymous.
func GetUserID(c echo.Context) int64 {
	if userID, ok := c.Get(UserIDKey).(int64); ok {
		return userID
	}
	return 0
}

// GetLogger retrieves the request-scoped logger from Echo context.
//
// If EnhanceContext middleware didn't run, it returns a no-op logger.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
