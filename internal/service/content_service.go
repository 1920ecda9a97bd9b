package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/jobs"
)

type contentStore interface {
	FindByID(ctx context.Context, id string) (*models.ContentItem, error)
	FindBySlugOrID(ctx context.Context, slugOrID string) (*models.ContentItem, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, int, error)
	Update(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, id string) error
	RecordDownload(ctx context.Context, id string) (*models.DownloadReceipt, error)
}

type contentCategoryResolver interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type objectRemover interface {
	Delete(ctx context.Context, key string) error
}

// ContentListResult bundles a listing page with its pagination metadata.
type ContentListResult struct {
	Items      []models.ContentItem `json:"items"`
	Pagination models.Pagination    `json:"pagination"`
}

// ContentServiceConfig tunes listing cache behaviour.
type ContentServiceConfig struct {
	CacheEnabled bool
	ListingTTL   time.Duration
}

// ContentService manages the published catalog: listing, lookup, edits,
// moderation and download accounting.
type ContentService struct {
	repo       contentStore
	categories contentCategoryResolver
	store      objectRemover
	cache      listingCache
	gcQueue    *jobs.Queue
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ContentServiceConfig
}

// NewContentService constructs the service.
func NewContentService(repo contentStore, categories contentCategoryResolver, store objectRemover, cache listingCache, gcQueue *jobs.Queue, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg ContentServiceConfig) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = 60 * time.Second
	}
	return &ContentService{
		repo:       repo,
		categories: categories,
		store:      store,
		cache:      cache,
		gcQueue:    gcQueue,
		audit:      audit,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// BindGCQueue attaches the storage GC queue. The queue's handler comes from
// GCHandler, so the two are wired after construction.
func (s *ContentService) BindGCQueue(queue *jobs.Queue) {
	s.gcQueue = queue
}

// List returns a catalog page. Anonymous and regular callers only ever see
// approved items; admins may request the moderation backlog or their own
// pending uploads.
func (s *ContentService) List(ctx context.Context, query dto.ContentListQuery, actor *models.JWTClaims) (*ContentListResult, error) {
	if query.Type != "" && !query.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content type")
	}

	filter := models.ContentFilter{
		Type:         query.Type,
		CategorySlug: query.Category,
		Tag:          query.Tag,
		Search:       query.Search,
		ApprovedOnly: true,
		Page:         query.Page,
		PageSize:     query.PageSize,
		SortBy:       query.SortBy,
		SortOrder:    query.SortOrder,
	}
	switch {
	case query.Pending:
		if actor == nil || !actor.Role.IsAdmin() {
			return nil, appErrors.ErrForbidden
		}
		filter.ApprovedOnly = false
	case query.Mine:
		if actor == nil {
			return nil, appErrors.ErrUnauthorized
		}
		filter.UserID = actor.UserID
		filter.ApprovedOnly = false
	case query.Liked:
		if actor == nil {
			return nil, appErrors.ErrUnauthorized
		}
		filter.LikedBy = actor.UserID
	}

	cacheable := s.cacheEnabled() && filter.UserID == "" && filter.LikedBy == "" && filter.ApprovedOnly
	cacheKey := listingCacheKey(filter)
	if cacheable {
		var cached ContentListResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	result := &ContentListResult{
		Items:      items,
		Pagination: models.Pagination{Page: page, PageSize: pageSize, TotalCount: total},
	}
	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, result, s.cfg.ListingTTL); err != nil {
			s.logger.Warn("failed to cache listing", zap.Error(err))
		}
	}
	return result, nil
}

// Get resolves an item by slug or id. Pending items are only visible to
// their uploader and to admins.
func (s *ContentService) Get(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*models.ContentItem, error) {
	item, err := s.repo.FindBySlugOrID(ctx, slugOrID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if !item.IsApproved && !canModerate(actor, item.UserID) {
		return nil, appErrors.ErrNotFound
	}
	return item, nil
}

// Update applies partial edits. Owners may edit their own items; only admins
// may flip the approval flag or touch other people's content.
func (s *ContentService) Update(ctx context.Context, slugOrID string, req dto.UpdateContentRequest, actor *models.JWTClaims) (*models.ContentItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	item, err := s.repo.FindBySlugOrID(ctx, slugOrID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if !canModerate(actor, item.UserID) {
		return nil, appErrors.ErrForbidden
	}
	if req.IsApproved != nil && !actor.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "approval is admin only")
	}

	if req.Title != nil && *req.Title != item.Title {
		item.Title = *req.Title
		slug, err := uniqueSlug(ctx, item.Title, s.repo.SlugExists)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive slug")
		}
		if slug == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title yields an empty slug")
		}
		item.Slug = &slug
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Tags != nil {
		if len(*req.Tags) > models.MaxTagsPerItem {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d tags allowed", models.MaxTagsPerItem))
		}
		item.Tags = *req.Tags
	}
	if req.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *req.CategoryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "category does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve category")
		}
		if category.Type != item.Type {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category type does not match content type")
		}
		item.CategoryID = category.ID
	}
	if req.CopyrightInfo != nil {
		item.CopyrightInfo = req.CopyrightInfo
	}
	if req.IsApproved != nil {
		item.IsApproved = *req.IsApproved
	}
	if req.MetaTitle != nil {
		item.MetaTitle = req.MetaTitle
	}
	if req.MetaDescription != nil {
		item.MetaDescription = req.MetaDescription
	}
	if req.MetaKeywords != nil {
		item.MetaKeywords = req.MetaKeywords
	}
	if req.MetaImage != nil {
		item.MetaImage = req.MetaImage
	}
	if req.NoIndex != nil {
		item.NoIndex = *req.NoIndex
	}
	if req.IncludeInSitemap != nil {
		item.IncludeInSitemap = *req.IncludeInSitemap
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content")
	}

	s.invalidateListings(ctx)
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     auditActionForUpdate(req),
		Resource:   "content",
		ResourceID: &item.ID,
		NewValues:  []byte(fmt.Sprintf(`{"title":%q,"approved":%t}`, item.Title, item.IsApproved)),
	})
	return item, nil
}

// Delete removes an item and schedules its stored object for removal. The
// row disappears immediately; the object is garbage collected asynchronously
// so a slow or unavailable store never blocks the caller.
func (s *ContentService) Delete(ctx context.Context, slugOrID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return appErrors.ErrForbidden
	}
	item, err := s.repo.FindBySlugOrID(ctx, slugOrID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content")
	}

	if item.StorageKey != nil && *item.StorageKey != "" && s.gcQueue != nil {
		if err := s.gcQueue.Enqueue(jobs.Job{Type: "storage.gc", Payload: *item.StorageKey}); err != nil {
			s.logger.Warn("failed to enqueue storage gc", zap.String("key", *item.StorageKey), zap.Error(err))
		}
	}

	s.invalidateListings(ctx)
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionContentDelete,
		Resource:   "content",
		ResourceID: &item.ID,
	})
	return nil
}

// RecordDownload bumps the download counter and returns the asset URL. Only
// approved items can be downloaded.
func (s *ContentService) RecordDownload(ctx context.Context, slugOrID string) (*models.DownloadReceipt, error) {
	item, err := s.repo.FindBySlugOrID(ctx, slugOrID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if !item.IsApproved {
		return nil, appErrors.ErrNotFound
	}
	receipt, err := s.repo.RecordDownload(ctx, item.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record download")
	}
	return receipt, nil
}

// GCHandler returns the job handler that deletes orphaned storage objects.
func (s *ContentService) GCHandler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		key := job.Payload
		if key == "" {
			return nil
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete storage object %s: %w", key, err)
		}
		s.logger.Info("storage object removed", zap.String("key", key))
		return nil
	}
}

func (s *ContentService) cacheEnabled() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}

func (s *ContentService) invalidateListings(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "listing:*"); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}

func (s *ContentService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

func canModerate(actor *models.JWTClaims, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.Role.IsAdmin() || actor.UserID == ownerID
}

func auditActionForUpdate(req dto.UpdateContentRequest) string {
	if req.IsApproved != nil && *req.IsApproved {
		return models.AuditActionContentApprove
	}
	return models.AuditActionContentUpdate
}

func listingCacheKey(filter models.ContentFilter) string {
	return fmt.Sprintf("listing:%s:%s:%s:%s:%d:%d:%s:%s",
		filter.Type, filter.CategorySlug, filter.Tag, filter.Search,
		filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}
