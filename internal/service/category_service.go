package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type categoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindBySlug(ctx context.Context, contentType models.ContentType, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, contentType models.ContentType, slug string) (bool, error)
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

type categoryContentCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// CategoryService manages browse categories. All mutations are admin only.
type CategoryService struct {
	repo      categoryStore
	content   categoryContentCounter
	cache     listingCache
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(repo categoryStore, content categoryContentCounter, cache listingCache, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CategoryService{repo: repo, content: content, cache: cache, audit: audit, validator: validate, logger: logger}
}

// List returns categories for a content type with item counts.
func (s *CategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content type")
	}
	categories, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// Get resolves a category by type and slug.
func (s *CategoryService) Get(ctx context.Context, contentType models.ContentType, slug string) (*models.Category, error) {
	if !contentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content type")
	}
	category, err := s.repo.FindBySlug(ctx, contentType, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// Create registers a new category. The slug is derived from the name and must
// be unique within the content type.
func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest, actor *models.JWTClaims) (*models.Category, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content type")
	}

	slug, err := uniqueSlug(ctx, req.Name, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, req.Type, candidate)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive slug")
	}
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name yields no usable slug")
	}

	category := &models.Category{
		Name:            req.Name,
		Type:            req.Type,
		Slug:            slug,
		ThumbnailURL:    req.ThumbnailURL,
		About:           req.About,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	return category, nil
}

// Update applies partial edits to a category. A renamed category keeps its
// slug so published URLs stay stable.
func (s *CategoryService) Update(ctx context.Context, id string, req dto.UpdateCategoryRequest, actor *models.JWTClaims) (*models.Category, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.ThumbnailURL != nil {
		category.ThumbnailURL = req.ThumbnailURL
	}
	if req.About != nil {
		category.About = req.About
	}
	if req.MetaTitle != nil {
		category.MetaTitle = req.MetaTitle
	}
	if req.MetaDescription != nil {
		category.MetaDescription = req.MetaDescription
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}
	s.invalidateListings(ctx)
	return category, nil
}

// Delete removes a category. Deletion is refused while content still
// references it, so items never end up pointing at a missing category.
func (s *CategoryService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil || !actor.Role.IsAdmin() {
		return appErrors.ErrForbidden
	}

	count, err := s.content.CountByCategory(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count category content")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("category still has %d items", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionCategoryDelete,
			Resource:   "category",
			ResourceID: &id,
		}); err != nil {
			s.logger.Warn("failed to record category audit log", zap.Error(err))
		}
	}
	s.invalidateListings(ctx)
	return nil
}

func (s *CategoryService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "listing:*"); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}
