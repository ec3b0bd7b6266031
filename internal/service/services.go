package service

import (
	"github.com/deppfellow/pages-api/internal/repository"
	"github.com/deppfellow/pages-api/internal/server"
)

type Services struct {
	Auth *AuthService
	Page *PageService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Auth: NewAuthService(s),
		Page: NewPageService(s, repos),
	}, nil
}
