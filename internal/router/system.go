package router

import (
	"github.com/deppfellow/pages-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the API itself.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	// Liveness/readiness for load balancers and monitors.
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and any other docs assets.
	r.Static("/static", handler.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
