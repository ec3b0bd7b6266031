package middleware

import (
	"net/http"

	"github.com/deppfellow/pages-api/internal/errs"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/deppfellow/pages-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups "global" middleware and the global error handler.
//
// Middleware functions access shared app dependencies (config, logging)
// through *server.Server.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo's CORS middleware configured by server.cors_allowed_origins.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  global.server.Config.Server.CORSAllowedOrigins,
		ExposeHeaders: []string{RequestIDHeader},
	})
}

// RequestLogger returns Echo's request logger middleware with a zerolog
// LogValuesFunc: one line per request, level chosen by status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// When a handler returns an error the response has not been written
			// yet, so the status is derived from the error itself.
			// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode = errorStatus(v.Error)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn().Err(v.Error)
			default:
				e = logger.Info()
			}

			e.Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func errorStatus(err error) int {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// Recover returns Echo's panic recovery middleware.
// Panics become errors and flow into GlobalErrorHandler as opaque 500s.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure returns Echo's secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Every error ends up here. Known kinds keep their status and message;
// anything else is logged with its request id and answered with an opaque 500.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	// The original error is kept for logs; err may be replaced with
	// something safe to show the client.
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			httpErr = fromEchoError(echoErr)
		} else {
			// Driver, database or unknown errors.
			errors.As(sqlerr.HandleError(err), &httpErr)
		}
	}
	if httpErr == nil {
		httpErr = errs.NewInternalServerError()
	}

	logger := GetLogger(c)

	var e *zerolog.Event
	if httpErr.Status >= http.StatusInternalServerError {
		e = logger.Error().Stack()
	} else {
		e = logger.Warn()
	}

	e.Err(originalErr).
		Str("request_id", GetRequestID(c)).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}

	_ = c.JSON(httpErr.Status, httpErr)
}

// fromEchoError converts Echo's own errors (unknown route, method not
// allowed, body too large, ...) into the API error shape.
func fromEchoError(echoErr *echo.HTTPError) *errs.HTTPError {
	switch echoErr.Code {
	case http.StatusNotFound:
		return errs.NewNotFoundError("Route not found")
	case http.StatusUnauthorized:
		return errs.NewUnauthorizedError("Unauthorized")
	case http.StatusTooManyRequests:
		return errs.NewTooManyRequestsError()
	}

	if echoErr.Code >= http.StatusInternalServerError {
		return errs.NewInternalServerError()
	}

	message := http.StatusText(echoErr.Code)
	if msg, ok := echoErr.Message.(string); ok && msg != "" {
		message = msg
	}

	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
		Message: message,
		Status:  echoErr.Code,
	}
}
