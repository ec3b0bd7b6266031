package service

import (
	"context"
	"errors"

	"github.com/deppfellow/pages-api/internal/errs"
	"github.com/deppfellow/pages-api/internal/model"
	"github.com/deppfellow/pages-api/internal/repository"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/rs/zerolog"
)

const pageNotFoundMessage = "Page not found"

// PageService implements the page operations. Every call is scoped to the
// author it receives; pages owned by someone else behave as missing.
type PageService struct {
	server *server.Server
	pages  *repository.PageRepository
	tasks  *repository.TaskRepository
}

func NewPageService(s *server.Server, repos *repository.Repositories) *PageService {
	return &PageService{
		server: s,
		pages:  repos.Pages,
		tasks:  repos.Tasks,
	}
}

// CreatePage stores a new page for payload.Author and returns it as persisted.
func (s *PageService) CreatePage(ctx context.Context, payload *model.CreatePagePayload) (*model.Page, error) {
	if payload.ParentPageID != nil {
		if err := checkParentOwned(ctx, s.pages, *payload.ParentPageID, payload.Author); err != nil {
			return nil, err
		}
	}

	page, err := s.pages.Create(ctx, payload.ToPage())
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("page_id", page.ID).
		Int64("author", page.Author).
		Msg("page created")

	return page, nil
}

// GetPage returns the page with its direct children and its tasks.
func (s *PageService) GetPage(ctx context.Context, id, author int64) (*model.PageDetail, error) {
	if id <= 0 {
		return nil, errs.NewNotFoundError(pageNotFoundMessage)
	}

	page, err := s.pages.GetOwned(ctx, id, author)
	if err != nil {
		return nil, mapPageError(err)
	}

	children, err := s.pages.ListChildren(ctx, id, author)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByPage(ctx, id, author)
	if err != nil {
		return nil, err
	}

	return &model.PageDetail{
		Page:     page,
		Children: children,
		Tasks:    tasks,
	}, nil
}

// UpdatePage replaces every mutable field of the page identified by
// (payload.ID, payload.Author). The parent is checked inside the update's
// transaction, after the page itself was found.
func (s *PageService) UpdatePage(ctx context.Context, payload *model.UpdatePagePayload) (*model.Page, error) {
	if payload.ID <= 0 {
		return nil, errs.NewNotFoundError(pageNotFoundMessage)
	}

	page, err := s.pages.Update(ctx, payload.ID, payload.Author,
		func(ctx context.Context, pages *repository.PageRepository, current *model.Page) error {
			if payload.ParentPageID != nil {
				if err := checkParent(ctx, pages, current.ID, *payload.ParentPageID, payload.Author); err != nil {
					return err
				}
			}
			payload.Apply(current)
			return nil
		})
	if err != nil {
		return nil, mapPageError(err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("page_id", page.ID).
		Int64("author", page.Author).
		Msg("page updated")

	return page, nil
}

// DeletePage removes the page; children and tasks go with it.
func (s *PageService) DeletePage(ctx context.Context, id, author int64) error {
	if id <= 0 {
		return errs.NewNotFoundError(pageNotFoundMessage)
	}

	if err := s.pages.Delete(ctx, id, author); err != nil {
		return mapPageError(err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("page_id", id).
		Int64("author", author).
		Msg("page deleted")

	return nil
}

func checkParentOwned(ctx context.Context, pages *repository.PageRepository, parentID, author int64) error {
	if _, err := pages.GetOwned(ctx, parentID, author); err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			return errs.NewFieldError("parent_page_id", "references an unknown parent page")
		}
		return err
	}
	return nil
}

// checkParent rejects parents that are missing, foreign, the page itself,
// or one of its descendants.
func checkParent(ctx context.Context, pages *repository.PageRepository, pageID, parentID, author int64) error {
	if parentID == pageID {
		return errs.NewFieldError("parent_page_id", "cannot reference the page itself")
	}

	if err := checkParentOwned(ctx, pages, parentID, author); err != nil {
		return err
	}

	cycle, err := pages.IsAncestor(ctx, pageID, parentID, author)
	if err != nil {
		return err
	}
	if cycle {
		return errs.NewFieldError("parent_page_id", "cannot reference a descendant of the page")
	}

	return nil
}

func mapPageError(err error) error {
	if errors.Is(err, repository.ErrPageNotFound) {
		return errs.NewNotFoundError(pageNotFoundMessage)
	}
	return err
}
