package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ringbuz/ringbuz-api/internal/models"
)

// CategoryRepository provides database access for browse categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO categories (id, name, type, slug, thumbnail_url, about, meta_title, meta_description, created_at)
	VALUES (:id, :name, :type, :slug, :thumbnail_url, :about, :meta_title, :meta_description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// FindByID returns a category by identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	const query = `SELECT id, name, type, slug, thumbnail_url, about, meta_title, meta_description, created_at,
	 (SELECT COUNT(*) FROM content_items ci WHERE ci.category_id = categories.id) AS item_count
	FROM categories WHERE id = $1 LIMIT 1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return &category, nil
}

// FindBySlug returns a category by its slug and type.
func (r *CategoryRepository) FindBySlug(ctx context.Context, contentType models.ContentType, slug string) (*models.Category, error) {
	const query = `SELECT id, name, type, slug, thumbnail_url, about, meta_title, meta_description, created_at,
	 (SELECT COUNT(*) FROM content_items ci WHERE ci.category_id = categories.id) AS item_count
	FROM categories WHERE type = $1 AND slug = $2 LIMIT 1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, contentType, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return &category, nil
}

// SlugExists reports whether a slug is taken within a content type.
func (r *CategoryRepository) SlugExists(ctx context.Context, contentType models.ContentType, slug string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM categories WHERE type = $1 AND slug = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, contentType, slug); err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

// List returns categories matching the filter with item counts.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, name, type, slug, thumbnail_url, about, meta_title, meta_description, created_at,
	 (SELECT COUNT(*) FROM content_items ci WHERE ci.category_id = categories.id) AS item_count
	FROM categories`)
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY name ASC, id ASC")

	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Update updates mutable fields of a category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	const query = `UPDATE categories SET name = :name, slug = :slug, thumbnail_url = :thumbnail_url,
	 about = :about, meta_title = :meta_title, meta_description = :meta_description
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, category)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check category update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a category. Callers must verify no content references it.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check category delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
