package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/media"
	"github.com/ringbuz/ringbuz-api/pkg/storage"
)

type uploadContentStore interface {
	Create(ctx context.Context, item *models.ContentItem) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type uploadCategoryResolver interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type uploadObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ContentUpload carries the file stream submitted with a create request.
type ContentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// UploadServiceConfig holds validation parameters for the upload pipeline.
type UploadServiceConfig struct {
	MaxFileSize     int64
	URLCheckTimeout time.Duration
}

var allowedUploadMIMEs = map[models.ContentType]map[string]struct{}{
	models.ContentTypeWallpapers: {
		"image/jpeg": {},
		"image/png":  {},
		"image/webp": {},
	},
	models.ContentTypeRingtones: {
		"audio/mpeg": {},
		"audio/wav":  {},
	},
}

// UploadService owns the content creation path: validation, object storage,
// metadata extraction and the catalog insert.
type UploadService struct {
	repo       uploadContentStore
	categories uploadCategoryResolver
	store      uploadObjectStore
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
	httpClient *http.Client
	cfg        UploadServiceConfig
}

// NewUploadService constructs the service with defaults.
func NewUploadService(repo uploadContentStore, categories uploadCategoryResolver, store uploadObjectStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 50 * 1024 * 1024
	}
	if cfg.URLCheckTimeout <= 0 {
		cfg.URLCheckTimeout = 5 * time.Second
	}
	return &UploadService{
		repo:       repo,
		categories: categories,
		store:      store,
		audit:      audit,
		validator:  validate,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.URLCheckTimeout},
		cfg:        cfg,
	}
}

// CreateFromFile stores the uploaded object and inserts the catalog row. New
// items start unapproved unless the actor is an admin. If the insert fails
// the stored object is removed again so no orphan remains.
func (s *UploadService) CreateFromFile(ctx context.Context, req dto.CreateContentRequest, upload ContentUpload, actor *models.JWTClaims) (*models.ContentItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	category, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	mimeType, err := s.detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := allowedUploadMIMEs[req.Type][mimeType]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mime type %s not allowed for %s", mimeType, req.Type))
	}

	// Metadata extraction is best effort: a file that stores fine but
	// defeats the probe is published without dimensions or duration.
	var meta *media.Metadata
	if _, err := upload.Content.Seek(0, io.SeekStart); err == nil {
		if m, probeErr := media.Probe(upload.Content, mimeType, upload.Size); probeErr == nil {
			meta = m
		} else {
			s.logger.Warn("media probe failed", zap.String("filename", upload.Filename), zap.Error(probeErr))
		}
	}

	key := storage.GenerateKey(string(req.Type), upload.Filename)
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if err := s.store.Put(ctx, key, upload.Content, upload.Size, mimeType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store upload")
	}

	item := s.buildItem(req, category, actor)
	item.StorageKey = &key
	item.URL = s.store.PublicURL(key)
	item.FileSize = upload.Size
	if meta != nil {
		item.Dimensions = meta.Dimensions
		item.DurationSeconds = meta.DurationSeconds
	}

	if err := s.finishCreate(ctx, item, actor); err != nil {
		s.compensate(key)
		return nil, err
	}
	return item, nil
}

// CreateFromURL registers an externally hosted asset. The URL is verified
// with a bounded HEAD request before the row is inserted.
func (s *UploadService) CreateFromURL(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	category, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.URL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "url is required")
	}

	size, err := s.checkExternalURL(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	item := s.buildItem(req, category, actor)
	item.URL = req.URL
	item.FileSize = size

	if err := s.finishCreate(ctx, item, actor); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *UploadService) validateRequest(ctx context.Context, req dto.CreateContentRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content type")
	}
	if len(req.Tags) > models.MaxTagsPerItem {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d tags allowed", models.MaxTagsPerItem))
	}
	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "category does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve category")
	}
	if category.Type != req.Type {
		return nil, appErrors.Clone(appErrors.ErrValidation, "category type does not match content type")
	}
	if Slugify(req.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title yields an empty slug")
	}
	return category, nil
}

func (s *UploadService) buildItem(req dto.CreateContentRequest, category *models.Category, actor *models.JWTClaims) *models.ContentItem {
	return &models.ContentItem{
		Type:             req.Type,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Tags:             req.Tags,
		CategoryID:       category.ID,
		CopyrightInfo:    req.CopyrightInfo,
		UserID:           actor.UserID,
		IsApproved:       actor.Role.IsAdmin(),
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
		MetaKeywords:     req.MetaKeywords,
		MetaImage:        req.MetaImage,
		IncludeInSitemap: true,
	}
}

func (s *UploadService) finishCreate(ctx context.Context, item *models.ContentItem, actor *models.JWTClaims) error {
	slug, err := uniqueSlug(ctx, item.Title, s.repo.SlugExists)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive slug")
	}
	if slug != "" {
		item.Slug = &slug
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionContentUpdate,
			Resource:   "content",
			ResourceID: &item.ID,
			NewValues:  []byte(fmt.Sprintf(`{"title":%q,"type":%q}`, item.Title, item.Type)),
		}); err != nil {
			s.logger.Warn("failed to record upload audit log", zap.Error(err))
		}
	}
	return nil
}

func (s *UploadService) compensate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("failed to remove orphaned object", zap.String("key", key), zap.Error(err))
	}
}

func (s *UploadService) detectMime(upload ContentUpload) (string, error) {
	head := make([]byte, 512)
	n, err := upload.Content.Read(head)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	detected := http.DetectContentType(head[:n])
	detected = strings.ToLower(strings.TrimSpace(strings.Split(detected, ";")[0]))
	// WAV sniffs as audio/wave; MP3s with ID3 tags sniff as octet-stream.
	switch detected {
	case "audio/wave", "audio/x-wav":
		detected = "audio/wav"
	case "application/octet-stream":
		if claimed := strings.ToLower(upload.MimeType); claimed == "audio/mpeg" || claimed == "audio/mp3" {
			detected = "audio/mpeg"
		}
	}
	return detected, nil
}

func (s *UploadService) checkExternalURL(ctx context.Context, url string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.URLCheckTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid url")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "url is not reachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("url returned status %d", resp.StatusCode))
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	return 0, nil
}
