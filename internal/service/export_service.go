package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/export"
	"github.com/ringbuz/ringbuz-api/pkg/jobs"
	"github.com/ringbuz/ringbuz-api/pkg/storage"
)

type exportContentLister interface {
	ListAll(ctx context.Context) ([]models.ContentItem, error)
}

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	UpdateStatus(ctx context.Context, job *models.ExportJob) error
	List(ctx context.Context, limit int) ([]models.ExportJob, error)
}

type exportFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload bundles a file handle for streaming an export result.
type ExportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ExportService renders catalog snapshots to CSV or PDF. Generation runs on
// the background queue; results are stored on disk and fetched through
// signed URLs.
type ExportService struct {
	content exportContentLister
	repo    exportJobStore
	storage exportFileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. Call BindQueue before use.
func NewExportService(content exportContentLister, repo exportJobStore, fileStore exportFileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		content: content,
		repo:    repo,
		storage: fileStore,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// BindQueue attaches the worker queue that runs generation jobs.
func (s *ExportService) BindQueue(queue *jobs.Queue) {
	s.queue = queue
}

// Handler returns the job handler that renders queued exports.
func (s *ExportService) Handler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		jobID := job.Payload
		if jobID == "" {
			return nil
		}
		return s.run(ctx, jobID)
	}
}

// Request enqueues a new catalog export. Admin only.
func (s *ExportService) Request(ctx context.Context, format export.Format, actor *models.JWTClaims) (*models.ExportJob, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue unavailable")
	}

	job := &models.ExportJob{
		Format:      string(format),
		Status:      models.ExportStatusPending,
		RequestedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{Type: "export.generate", Payload: job.ID}); err != nil {
		failure := err.Error()
		job.Status = models.ExportStatusFailed
		job.Error = &failure
		if updateErr := s.repo.UpdateStatus(ctx, job); updateErr != nil {
			s.logger.Warn("failed to mark export as failed", zap.Error(updateErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return job, nil
}

// Get returns an export job by id. Admin only.
func (s *ExportService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ExportJob, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// List returns recent export jobs. Admin only.
func (s *ExportService) List(ctx context.Context, limit int, actor *models.JWTClaims) ([]models.ExportJob, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	exports, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list export jobs")
	}
	return exports, nil
}

// Download validates the signed token and opens the rendered file.
func (s *ExportService) Download(token string) (*ExportDownload, error) {
	exportID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return &ExportDownload{
		File:      file,
		Filename:  fmt.Sprintf("catalog-%s%s", exportID, fileExt(relPath)),
		ExpiresAt: expiresAt,
	}, nil
}

// Cleanup removes rendered files older than ttl (defaults to ResultTTL).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) run(ctx context.Context, jobID string) error {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}
	job.Status = models.ExportStatusRunning
	if err := s.repo.UpdateStatus(ctx, job); err != nil {
		s.logger.Warn("failed to mark export running", zap.Error(err))
	}

	result, err := s.generate(ctx, job)
	now := time.Now().UTC()
	job.CompletedAt = &now
	if err != nil {
		failure := err.Error()
		job.Status = models.ExportStatusFailed
		job.Error = &failure
		if updateErr := s.repo.UpdateStatus(ctx, job); updateErr != nil {
			s.logger.Warn("failed to persist export failure", zap.Error(updateErr))
		}
		return err
	}

	job.Status = models.ExportStatusCompleted
	job.FilePath = &result.relPath
	job.DownloadURL = &result.url
	if err := s.repo.UpdateStatus(ctx, job); err != nil {
		return fmt.Errorf("persist export result: %w", err)
	}
	s.logger.Info("export completed", zap.String("job_id", job.ID), zap.String("format", job.Format))
	return nil
}

type exportResult struct {
	relPath string
	url     string
}

func (s *ExportService) generate(ctx context.Context, job *models.ExportJob) (*exportResult, error) {
	items, err := s.content.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	dataset := buildCatalogDataset(items)

	format := export.Format(job.Format)
	var payload []byte
	switch format {
	case export.FormatCSV:
		payload, err = s.csv.Render(dataset)
	case export.FormatPDF:
		payload, err = s.pdf.Render(dataset, "Catalog Export")
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("catalog-%s-%s.%s", job.ID, time.Now().UTC().Format("20060102-150405"), format.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, fmt.Errorf("save export: %w", err)
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, fmt.Errorf("sign export url: %w", err)
	}
	url := fmt.Sprintf("%s/admin/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	return &exportResult{relPath: relPath, url: url}, nil
}

func buildCatalogDataset(items []models.ContentItem) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"ID", "Type", "Title", "Category", "Tags", "Approved", "Downloads", "Likes", "Size", "Created"},
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":        item.ID,
			"Type":      string(item.Type),
			"Title":     item.Title,
			"Category":  item.CategoryName,
			"Tags":      strings.Join(item.Tags, "|"),
			"Approved":  strconv.FormatBool(item.IsApproved),
			"Downloads": strconv.FormatInt(item.Downloads, 10),
			"Likes":     strconv.FormatInt(item.LikeCount, 10),
			"Size":      strconv.FormatInt(item.FileSize, 10),
			"Created":   item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return dataset
}

func fileExt(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}
	return ""
}
