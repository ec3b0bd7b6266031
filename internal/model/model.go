// Package model holds the persisted entities and the request payloads
// that carry them across the HTTP boundary.
package model

import "time"

// User supplies the ownership key for pages and tasks.
//
// Deleting a user removes everything they authored.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(255);not null;uniqueIndex:users_username_key"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`

	Pages []Page `json:"-" gorm:"foreignKey:Author;constraint:OnDelete:CASCADE"`
	Tasks []Task `json:"-" gorm:"foreignKey:Author;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}
