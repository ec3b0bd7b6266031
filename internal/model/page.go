package model

import (
	"time"

	"github.com/deppfellow/pages-api/internal/validation"
)

// Page is a hierarchical container owned by exactly one author.
//
// Children and Tasks exist for the schema (cascade on delete); they are
// never loaded implicitly and are not serialized.
type Page struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	PageName        string    `json:"page_name" gorm:"type:varchar(255);not null"`
	PageDescription string    `json:"page_description" gorm:"type:text;not null;default:''"`
	Color           string    `json:"color" gorm:"type:varchar(64);not null;default:''"`
	ParentPageID    *int64    `json:"parent_page_id" gorm:"index:idx_pages_parent_page_id"`
	Author          int64     `json:"author" gorm:"not null;index:idx_pages_author"`
	CreatedAt       time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`

	Children []Page `json:"-" gorm:"foreignKey:ParentPageID;constraint:OnDelete:CASCADE"`
	Tasks    []Task `json:"-" gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

func (Page) TableName() string {
	return "pages"
}

// PageDetail is the read model returned by GET /pages/:page_id.
// Children and Tasks are always non-nil so they encode as [].
type PageDetail struct {
	Page     *Page  `json:"page"`
	Children []Page `json:"children"`
	Tasks    []Task `json:"tasks"`
}

// ------------------------------------------------------------

// CreatePagePayload is the body of POST /pages.
//
// Author is never read from the body: the handler pipeline stamps the
// authenticated caller into it before validation runs.
type CreatePagePayload struct {
	PageName        string `json:"page_name" validate:"required,max=255"`
	PageDescription string `json:"page_description" validate:"max=10000"`
	Color           string `json:"color" validate:"omitempty,iscolor"`
	ParentPageID    *int64 `json:"parent_page_id" validate:"omitempty,gt=0"`
	Author          int64  `json:"-" validate:"required,gt=0"`
}

func (p *CreatePagePayload) SetAuthor(userID int64) {
	p.Author = userID
}

func (p *CreatePagePayload) Validate() error {
	return validation.Struct(p)
}

// ToPage builds a new, unsaved Page from the payload.
func (p *CreatePagePayload) ToPage() *Page {
	return &Page{
		PageName:        p.PageName,
		PageDescription: p.PageDescription,
		Color:           p.Color,
		ParentPageID:    p.ParentPageID,
		Author:          p.Author,
	}
}

// ------------------------------------------------------------

// UpdatePagePayload is the body of PUT /pages/:page_id.
//
// It is a full replacement: fields omitted from the body are written back
// as their zero value.
type UpdatePagePayload struct {
	ID              int64  `param:"page_id" json:"-"`
	PageName        string `json:"page_name" validate:"required,max=255"`
	PageDescription string `json:"page_description" validate:"max=10000"`
	Color           string `json:"color" validate:"omitempty,iscolor"`
	ParentPageID    *int64 `json:"parent_page_id" validate:"omitempty,gt=0"`
	Author          int64  `json:"-" validate:"required,gt=0"`
}

func (p *UpdatePagePayload) SetAuthor(userID int64) {
	p.Author = userID
}

func (p *UpdatePagePayload) Validate() error {
	return validation.Struct(p)
}

// Apply overwrites every mutable column of page.
func (p *UpdatePagePayload) Apply(page *Page) {
	page.Author = p.Author
	page.ParentPageID = p.ParentPageID
	page.PageName = p.PageName
	page.PageDescription = p.PageDescription
	page.Color = p.Color
}

// ------------------------------------------------------------

// PageIDParam binds the :page_id path segment for GET and DELETE.
type PageIDParam struct {
	ID int64 `param:"page_id"`
}

func (p *PageIDParam) Validate() error {
	return nil
}
