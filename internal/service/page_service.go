package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type pageStore interface {
	Create(ctx context.Context, page *models.Page) error
	FindBySlug(ctx context.Context, slug string) (*models.Page, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Page, error)
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id string) error
}

// PageService manages admin-authored static pages.
type PageService struct {
	repo      pageStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPageService constructs the service.
func NewPageService(repo pageStore, validate *validator.Validate, logger *zap.Logger) *PageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PageService{repo: repo, validator: validate, logger: logger}
}

// Get returns a page by slug. Unpublished pages are admin only.
func (s *PageService) Get(ctx context.Context, slug string, actor *models.JWTClaims) (*models.Page, error) {
	page, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}
	if !page.Published && (actor == nil || !actor.Role.IsAdmin()) {
		return nil, appErrors.ErrNotFound
	}
	return page, nil
}

// List returns pages; non-admins only see published ones.
func (s *PageService) List(ctx context.Context, actor *models.JWTClaims) ([]models.Page, error) {
	publishedOnly := actor == nil || !actor.Role.IsAdmin()
	pages, err := s.repo.List(ctx, publishedOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}
	return pages, nil
}

// Create registers a new page. Admin only.
func (s *PageService) Create(ctx context.Context, req dto.CreatePageRequest, actor *models.JWTClaims) (*models.Page, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid page payload")
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug yields no usable value")
	}
	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "page slug already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}

	page := &models.Page{
		Slug:            slug,
		Title:           req.Title,
		Body:            req.Body,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Published:       req.Published,
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create page")
	}
	return page, nil
}

// Update applies partial edits to a page. Admin only.
func (s *PageService) Update(ctx context.Context, slug string, req dto.UpdatePageRequest, actor *models.JWTClaims) (*models.Page, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid page payload")
	}

	page, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}

	if req.Slug != nil {
		newSlug := Slugify(*req.Slug)
		if newSlug == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "slug yields no usable value")
		}
		page.Slug = newSlug
	}
	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Body != nil {
		page.Body = *req.Body
	}
	if req.MetaTitle != nil {
		page.MetaTitle = req.MetaTitle
	}
	if req.MetaDescription != nil {
		page.MetaDescription = req.MetaDescription
	}
	if req.Published != nil {
		page.Published = *req.Published
	}

	if err := s.repo.Update(ctx, page); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update page")
	}
	return page, nil
}

// Delete removes a page. Admin only.
func (s *PageService) Delete(ctx context.Context, slug string, actor *models.JWTClaims) error {
	if actor == nil || !actor.Role.IsAdmin() {
		return appErrors.ErrForbidden
	}
	page, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}
	if err := s.repo.Delete(ctx, page.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete page")
	}
	return nil
}
