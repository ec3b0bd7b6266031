package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/pages-api/internal/model"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByPage returns the tasks of pageID owned by author, ordered by id.
// The result is never nil.
func (r *TaskRepository) ListByPage(ctx context.Context, pageID, author int64) ([]model.Task, error) {
	tasks := []model.Task{}

	err := r.db.WithContext(ctx).
		Where("page_id = ? AND author = ?", pageID, author).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("listing tasks of page %d: %w", pageID, err)
	}

	return tasks, nil
}

// Create inserts a task. The page must exist; ownership is the caller's concern.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}
