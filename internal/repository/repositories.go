package repository

import (
	"github.com/deppfellow/pages-api/internal/server"
)

// Repositories is a container for all repository instances.
//
// Services receive this container and pick the repositories they need.
type Repositories struct {
	Users *UserRepository
	Pages *PageRepository
	Tasks *TaskRepository
}

// NewRepositories constructs the repository container over the server's ORM handle.
func NewRepositories(s *server.Server) *Repositories {
	db := s.DB.ORM

	return &Repositories{
		Users: NewUserRepository(db),
		Pages: NewPageRepository(db),
		Tasks: NewTaskRepository(db),
	}
}
