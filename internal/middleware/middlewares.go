package middleware

import (
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups all middleware components used by the HTTP server,
// so the router receives one value built once with its dependencies.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and
	// the global error handler.
	Global *GlobalMiddlewares

	// Auth verifies bearer tokens and attaches the user id.
	Auth *AuthMiddleware

	// ContextEnhancer enriches each request with a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and custom attributes.
	Tracing *TracingMiddleware

	// RateLimit throttles clients by IP.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components.
//
// When New Relic is not configured nrApp is nil and the tracing
// middleware degrades into a no-op.
func NewMiddlewares(s *server.Server, tokens TokenParser) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, tokens),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
