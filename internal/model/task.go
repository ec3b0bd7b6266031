package model

import "time"

// Task belongs to a page and shares its author.
type Task struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	TaskName        string    `json:"task_name" gorm:"type:varchar(255);not null"`
	TaskDescription string    `json:"task_description" gorm:"type:text;not null;default:''"`
	IsCompleted     bool      `json:"is_completed" gorm:"not null;default:false"`
	PageID          int64     `json:"page_id" gorm:"not null;index:idx_tasks_page_id"`
	Author          int64     `json:"author" gorm:"not null;index:idx_tasks_page_id"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}
