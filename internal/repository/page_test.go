package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/deppfellow/pages-api/internal/database"
	"github.com/deppfellow/pages-api/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "pages.db"), &logger, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := db.AutoMigrate(ctx); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	users := NewUserRepository(db.ORM)
	for _, u := range []model.User{{ID: 7, Username: "seven"}, {ID: 9, Username: "nine"}} {
		if err := users.Create(ctx, &u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	return db.ORM
}

func createPage(t *testing.T, repo *PageRepository, page *model.Page) *model.Page {
	t.Helper()

	created, err := repo.Create(context.Background(), page)
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	return created
}

func TestPageRepositoryCreateReloads(t *testing.T) {
	t.Parallel()

	repo := NewPageRepository(newTestDB(t))
	page := createPage(t, repo, &model.Page{PageName: "Notes", Color: "#fff", Author: 7})

	if page.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if page.CreatedAt.IsZero() || page.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be populated, got %+v", page)
	}
	if page.Author != 7 || page.PageName != "Notes" || page.Color != "#fff" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestPageRepositoryGetOwnedScopesByAuthor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))
	page := createPage(t, repo, &model.Page{PageName: "Mine", Author: 7})

	if _, err := repo.GetOwned(ctx, page.ID, 7); err != nil {
		t.Fatalf("owner should see page: %v", err)
	}
	if _, err := repo.GetOwned(ctx, page.ID, 9); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound for other author, got %v", err)
	}
	if _, err := repo.GetOwned(ctx, page.ID+100, 7); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound for missing page, got %v", err)
	}
}

func TestPageRepositoryListChildren(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))
	parent := createPage(t, repo, &model.Page{PageName: "Parent", Author: 7})
	createPage(t, repo, &model.Page{PageName: "Child", Author: 7, ParentPageID: &parent.ID})

	children, err := repo.ListChildren(ctx, parent.ID, 7)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 || children[0].PageName != "Child" {
		t.Fatalf("unexpected children %+v", children)
	}

	children, err = repo.ListChildren(ctx, parent.ID, 9)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if children == nil || len(children) != 0 {
		t.Fatalf("expected empty non-nil slice for other author, got %#v", children)
	}
}

func TestPageRepositoryUpdateReplacesFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))
	parent := createPage(t, repo, &model.Page{PageName: "Parent", Author: 7})
	page := createPage(t, repo, &model.Page{
		PageName:        "Old",
		PageDescription: "old description",
		Color:           "#000",
		ParentPageID:    &parent.ID,
		Author:          7,
	})

	updated, err := repo.Update(ctx, page.ID, 7, func(_ context.Context, _ *PageRepository, p *model.Page) error {
		p.PageName = "New"
		p.PageDescription = ""
		p.Color = ""
		p.ParentPageID = nil
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.PageName != "New" || updated.PageDescription != "" || updated.Color != "" || updated.ParentPageID != nil {
		t.Fatalf("expected full replace, got %+v", updated)
	}
}

func TestPageRepositoryUpdateNotOwned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))
	page := createPage(t, repo, &model.Page{PageName: "Mine", Author: 7})

	called := false
	_, err := repo.Update(ctx, page.ID, 9, func(context.Context, *PageRepository, *model.Page) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if called {
		t.Fatalf("apply must not run for a page the caller does not own")
	}

	unchanged, err := repo.GetOwned(ctx, page.ID, 7)
	if err != nil || unchanged.PageName != "Mine" {
		t.Fatalf("expected page untouched, got %+v, %v", unchanged, err)
	}
}

func TestPageRepositoryUpdateAbortsOnApplyError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))
	parent := createPage(t, repo, &model.Page{PageName: "Parent", Author: 7})
	page := createPage(t, repo, &model.Page{PageName: "Child", Author: 7, ParentPageID: &parent.ID})

	errRejected := errors.New("rejected")
	_, err := repo.Update(ctx, parent.ID, 7, func(ctx context.Context, pages *PageRepository, p *model.Page) error {
		cycle, err := pages.IsAncestor(ctx, p.ID, page.ID, 7)
		if err != nil {
			return err
		}
		if !cycle {
			t.Errorf("expected the transaction bound repository to see the hierarchy")
		}
		p.PageName = "Renamed"
		p.ParentPageID = &page.ID
		return errRejected
	})
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected the apply error, got %v", err)
	}

	unchanged, err := repo.GetOwned(ctx, parent.ID, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if unchanged.PageName != "Parent" || unchanged.ParentPageID != nil {
		t.Fatalf("expected nothing written, got %+v", unchanged)
	}
}

func TestPageRepositoryUpdateUnknownAuthor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))

	_, err := repo.Update(ctx, 1, 404, func(context.Context, *PageRepository, *model.Page) error {
		t.Errorf("apply must not run without an author")
		return nil
	})
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestPageRepositoryDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPageRepository(db)
	tasks := NewTaskRepository(db)

	page := createPage(t, repo, &model.Page{PageName: "Doomed", Author: 7})
	child := createPage(t, repo, &model.Page{PageName: "Child", Author: 7, ParentPageID: &page.ID})
	if err := tasks.Create(ctx, &model.Task{TaskName: "Task", PageID: page.ID, Author: 7}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := repo.Delete(ctx, page.ID, 9); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound for other author, got %v", err)
	}
	if _, err := repo.GetOwned(ctx, page.ID, 7); err != nil {
		t.Fatalf("page must survive a foreign delete: %v", err)
	}

	if err := repo.Delete(ctx, page.ID, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetOwned(ctx, page.ID, 7); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected page gone, got %v", err)
	}
	if _, err := repo.GetOwned(ctx, child.ID, 7); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected child removed by cascade, got %v", err)
	}

	remaining, err := tasks.ListByPage(ctx, page.ID, 7)
	if err != nil || len(remaining) != 0 {
		t.Fatalf("expected tasks removed by cascade, got %v, %v", remaining, err)
	}

	if err := repo.Delete(ctx, page.ID, 7); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}

func TestPageRepositoryIsAncestor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPageRepository(newTestDB(t))
	root := createPage(t, repo, &model.Page{PageName: "Root", Author: 7})
	mid := createPage(t, repo, &model.Page{PageName: "Mid", Author: 7, ParentPageID: &root.ID})
	leaf := createPage(t, repo, &model.Page{PageName: "Leaf", Author: 7, ParentPageID: &mid.ID})

	ok, err := repo.IsAncestor(ctx, root.ID, leaf.ID, 7)
	if err != nil || !ok {
		t.Fatalf("expected root to be an ancestor of leaf, got %v, %v", ok, err)
	}

	ok, err = repo.IsAncestor(ctx, leaf.ID, root.ID, 7)
	if err != nil || ok {
		t.Fatalf("expected leaf not to be an ancestor of root, got %v, %v", ok, err)
	}

	ok, err = repo.IsAncestor(ctx, mid.ID, mid.ID, 7)
	if err != nil || !ok {
		t.Fatalf("expected a page to count as its own ancestor, got %v, %v", ok, err)
	}
}

func TestTaskRepositoryListByPageScopesByAuthor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	pages := NewPageRepository(db)
	tasks := NewTaskRepository(db)

	page := createPage(t, pages, &model.Page{PageName: "Page", Author: 7})
	if err := tasks.Create(ctx, &model.Task{TaskName: "Mine", PageID: page.ID, Author: 7}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	mine, err := tasks.ListByPage(ctx, page.ID, 7)
	if err != nil || len(mine) != 1 || mine[0].TaskName != "Mine" {
		t.Fatalf("unexpected tasks %+v, %v", mine, err)
	}

	theirs, err := tasks.ListByPage(ctx, page.ID, 9)
	if err != nil || len(theirs) != 0 {
		t.Fatalf("expected no tasks for other author, got %+v, %v", theirs, err)
	}
}

func TestUserRepositoryGetByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	user, err := users.GetByID(ctx, 7)
	if err != nil || user.Username != "seven" {
		t.Fatalf("unexpected user %+v, %v", user, err)
	}
	if _, err := users.GetByID(ctx, 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
