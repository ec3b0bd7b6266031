// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/pages-api/internal/handler"
	"github.com/deppfellow/pages-api/internal/middleware"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/deppfellow/pages-api/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global middleware chain,
// system routes and the versioned API.
//
// Order matters: the request id must exist before the New Relic
// transaction and the context logger read it, the request logger runs
// inside the context enhancer so it logs with the request fields, and
// throttled requests still get a request id and a log line.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerPageRoutes(v1, h, middlewares.Auth)

	return router
}
