package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringbuz/ringbuz-api/internal/models"
)

// ExportRepository tracks catalog export jobs.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository creates a new instance of ExportRepository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a new export job record.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO export_jobs (id, format, status, file_path, download_url, error, requested_by, created_at, completed_at)
	VALUES (:id, :format, :status, :file_path, :download_url, :error, :requested_by, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID returns an export job by identifier.
func (r *ExportRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `SELECT id, format, status, file_path, download_url, error, requested_by, created_at, completed_at FROM export_jobs WHERE id = $1 LIMIT 1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find export job: %w", err)
	}
	return &job, nil
}

// UpdateStatus transitions a job and records its outcome fields.
func (r *ExportRepository) UpdateStatus(ctx context.Context, job *models.ExportJob) error {
	const query = `UPDATE export_jobs SET status = :status, file_path = :file_path, download_url = :download_url,
	 error = :error, completed_at = :completed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// List returns recent export jobs, newest first.
func (r *ExportRepository) List(ctx context.Context, limit int) ([]models.ExportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, format, status, file_path, download_url, error, requested_by, created_at, completed_at FROM export_jobs ORDER BY created_at DESC LIMIT %d`, limit)
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	return jobs, nil
}
