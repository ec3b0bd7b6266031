package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/pages-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPageNotFound is returned when no page matches (id, author).
//
// A page owned by someone else is reported the same way as a page that
// does not exist.
var ErrPageNotFound = errors.New("page not found")

// MaxPageDepth bounds ancestor walks so a corrupted hierarchy can't loop forever.
const MaxPageDepth = 1000

type PageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Create inserts page in its own transaction and reloads it afterwards so
// generated columns (id, timestamps, defaults) are populated.
func (r *PageRepository) Create(ctx context.Context, page *model.Page) (*model.Page, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(page).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	created, err := r.GetOwned(ctx, page.ID, page.Author)
	if err != nil {
		return nil, fmt.Errorf("reloading created page %d: %w", page.ID, err)
	}
	return created, nil
}

// GetOwned returns the page with id when it belongs to author.
func (r *PageRepository) GetOwned(ctx context.Context, id, author int64) (*model.Page, error) {
	return getOwnedPage(r.db.WithContext(ctx), id, author)
}

func getOwnedPage(db *gorm.DB, id, author int64) (*model.Page, error) {
	var page model.Page

	err := db.Where("id = ? AND author = ?", id, author).Take(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("fetching page %d: %w", id, err)
	}

	return &page, nil
}

// ListChildren returns the direct children of parentID owned by author,
// ordered by id. The result is never nil.
func (r *PageRepository) ListChildren(ctx context.Context, parentID, author int64) ([]model.Page, error) {
	children := []model.Page{}

	err := r.db.WithContext(ctx).
		Where("parent_page_id = ? AND author = ?", parentID, author).
		Order("id ASC").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("listing children of page %d: %w", parentID, err)
	}

	return children, nil
}

// PageUpdateFunc overwrites the fields of page. pages is bound to the
// update's transaction, so checks made through it see the same snapshot
// that is written. A non-nil error aborts the update.
type PageUpdateFunc func(ctx context.Context, pages *PageRepository, page *model.Page) error

// Update loads the page scoped by (id, author), lets apply overwrite its
// fields and saves every column in one transaction. ErrPageNotFound is
// returned before apply runs. The saved row is reloaded after commit.
//
// Updates by the same author are serialized on the author's user row, so
// two concurrent re-parent requests cannot each pass a cycle check and
// together close a loop.
func (r *PageRepository) Update(ctx context.Context, id, author int64, apply PageUpdateFunc) (*model.Page, error) {
	var newAuthor int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAuthor(tx, author); err != nil {
			return err
		}

		page, err := getOwnedPage(tx, id, author)
		if err != nil {
			return err
		}

		if err := apply(ctx, &PageRepository{db: tx}, page); err != nil {
			return err
		}
		newAuthor = page.Author

		return tx.Save(page).Error
	})
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("updating page %d: %w", id, err)
	}

	updated, err := r.GetOwned(ctx, id, newAuthor)
	if err != nil {
		return nil, fmt.Errorf("reloading updated page %d: %w", id, err)
	}
	return updated, nil
}

// lockAuthor takes a row lock on the author's user record. SQLite has no
// row locks and ignores the clause; its writers are serialized anyway.
// A missing author owns no pages.
func lockAuthor(tx *gorm.DB, author int64) error {
	var user model.User

	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id").
		Where("id = ?", author).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPageNotFound
		}
		return fmt.Errorf("locking pages of author %d: %w", author, err)
	}
	return nil
}

// Delete removes the page with a single statement scoped by (id, author).
// Child pages and tasks are removed by the ON DELETE CASCADE constraints.
func (r *PageRepository) Delete(ctx context.Context, id, author int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author = ?", id, author).
		Delete(&model.Page{})
	if result.Error != nil {
		return fmt.Errorf("deleting page %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

// IsAncestor reports whether ancestorID appears on the parent chain of
// pageID (pageID itself included). Only pages owned by author are followed.
func (r *PageRepository) IsAncestor(ctx context.Context, ancestorID, pageID, author int64) (bool, error) {
	db := r.db.WithContext(ctx)
	current := &pageID

	for depth := 0; current != nil && depth < MaxPageDepth; depth++ {
		if *current == ancestorID {
			return true, nil
		}

		var parent struct {
			ParentPageID *int64
		}
		err := db.Model(&model.Page{}).
			Select("parent_page_id").
			Where("id = ? AND author = ?", *current, author).
			Take(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("walking ancestors of page %d: %w", pageID, err)
		}

		current = parent.ParentPageID
	}

	if current != nil {
		return false, fmt.Errorf("page %d exceeds maximum depth of %d", pageID, MaxPageDepth)
	}
	return false, nil
}
