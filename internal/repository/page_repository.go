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

// PageRepository stores admin-managed static pages.
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new instance of PageRepository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Create inserts a new page.
func (r *PageRepository) Create(ctx context.Context, page *models.Page) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now

	const query = `INSERT INTO pages (id, slug, title, body, meta_title, meta_description, published, created_at, updated_at)
	VALUES (:id, :slug, :title, :body, :meta_title, :meta_description, :published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// FindBySlug returns a page by slug.
func (r *PageRepository) FindBySlug(ctx context.Context, slug string) (*models.Page, error) {
	const query = `SELECT id, slug, title, body, meta_title, meta_description, published, created_at, updated_at FROM pages WHERE slug = $1 LIMIT 1`
	var page models.Page
	if err := r.db.GetContext(ctx, &page, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find page by slug: %w", err)
	}
	return &page, nil
}

// List returns all pages, optionally only published ones.
func (r *PageRepository) List(ctx context.Context, publishedOnly bool) ([]models.Page, error) {
	query := `SELECT id, slug, title, body, meta_title, meta_description, published, created_at, updated_at FROM pages`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY slug ASC`
	var pages []models.Page
	if err := r.db.SelectContext(ctx, &pages, query); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// Update updates mutable fields of a page.
func (r *PageRepository) Update(ctx context.Context, page *models.Page) error {
	page.UpdatedAt = time.Now().UTC()
	const query = `UPDATE pages SET slug = :slug, title = :title, body = :body, meta_title = :meta_title,
	 meta_description = :meta_description, published = :published, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, page)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check page update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a page.
func (r *PageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM pages WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check page delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
