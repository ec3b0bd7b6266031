package handler

import (
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/deppfellow/pages-api/internal/service"
)

// Handlers groups every HTTP handler so router setup receives one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Page    *PageHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Page:    NewPageHandler(s, services.Page),
	}
}
