package handler

import (
	"github.com/deppfellow/pages-api/internal/middleware"
	"github.com/deppfellow/pages-api/internal/model"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/deppfellow/pages-api/internal/service"
	"github.com/labstack/echo/v4"
)

type PageHandler struct {
	Handler
	pageService *service.PageService
}

func NewPageHandler(s *server.Server, pageService *service.PageService) *PageHandler {
	return &PageHandler{
		Handler:     NewHandler(s),
		pageService: pageService,
	}
}

func (h *PageHandler) CreatePage(c echo.Context, payload *model.CreatePagePayload) (*model.Page, error) {
	return h.pageService.CreatePage(c.Request().Context(), payload)
}

func (h *PageHandler) GetPage(c echo.Context, payload *model.PageIDParam) (*model.PageDetail, error) {
	return h.pageService.GetPage(c.Request().Context(), payload.ID, middleware.GetUserID(c))
}

func (h *PageHandler) UpdatePage(c echo.Context, payload *model.UpdatePagePayload) (*model.Page, error) {
	return h.pageService.UpdatePage(c.Request().Context(), payload)
}

func (h *PageHandler) DeletePage(c echo.Context, payload *model.PageIDParam) error {
	return h.pageService.DeletePage(c.Request().Context(), payload.ID, middleware.GetUserID(c))
}
