package router

import (
	"net/http"

	"github.com/deppfellow/pages-api/internal/handler"
	"github.com/deppfellow/pages-api/internal/middleware"
	"github.com/deppfellow/pages-api/internal/model"
	"github.com/labstack/echo/v4"
)

// registerPageRoutes mounts the page resource under /pages. Every route
// requires a bearer token.
func registerPageRoutes(g *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	pages := g.Group("/pages", auth.RequireAuth)

	pages.POST("", handler.Handle(
		h.Page.Handler,
		h.Page.CreatePage,
		http.StatusCreated,
		"Page Created",
		&model.CreatePagePayload{},
	))

	pages.GET("/:page_id", handler.Handle(
		h.Page.Handler,
		h.Page.GetPage,
		http.StatusOK,
		"page details loaded",
		&model.PageIDParam{},
	))

	pages.PUT("/:page_id", handler.Handle(
		h.Page.Handler,
		h.Page.UpdatePage,
		http.StatusOK,
		"Page Updated",
		&model.UpdatePagePayload{},
	))

	pages.DELETE("/:page_id", handler.HandleNoContent(
		h.Page.Handler,
		h.Page.DeletePage,
		http.StatusNoContent,
		&model.PageIDParam{},
	))
}
