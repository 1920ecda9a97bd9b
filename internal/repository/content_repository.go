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

const contentColumns = `c.id, c.slug, c.type, c.title, c.description, c.tags, c.category_id,
       c.storage_key, c.url, c.file_size, c.dimensions, c.duration_seconds, c.copyright_info,
       c.user_id, c.is_approved, c.downloads, c.meta_title, c.meta_description, c.meta_keywords,
       c.meta_image, c.no_index, c.include_in_sitemap, c.created_at, c.updated_at,
       cat.name AS category_name, cat.slug AS category_slug,
       (SELECT COUNT(*) FROM likes l WHERE l.content_id = c.id) AS like_count`

// ContentRepository provides database access to the content catalog.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new instance of ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a new content item.
func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO content_items
	(id, slug, type, title, description, tags, category_id, storage_key, url, file_size,
	 dimensions, duration_seconds, copyright_info, user_id, is_approved, downloads,
	 meta_title, meta_description, meta_keywords, meta_image, no_index, include_in_sitemap,
	 created_at, updated_at)
	VALUES (:id, :slug, :type, :title, :description, :tags, :category_id, :storage_key, :url, :file_size,
	 :dimensions, :duration_seconds, :copyright_info, :user_id, :is_approved, :downloads,
	 :meta_title, :meta_description, :meta_keywords, :meta_image, :no_index, :include_in_sitemap,
	 :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create content item: %w", err)
	}
	return nil
}

// FindByID returns one content item with its joined category columns.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM content_items c JOIN categories cat ON cat.id = c.category_id WHERE c.id = $1 LIMIT 1`, contentColumns)
	var item models.ContentItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return &item, nil
}

// FindBySlugOrID resolves an item by its slug, falling back to the id for
// legacy rows that never got one.
func (r *ContentRepository) FindBySlugOrID(ctx context.Context, slugOrID string) (*models.ContentItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM content_items c JOIN categories cat ON cat.id = c.category_id WHERE c.slug = $1 OR c.id::text = $1 LIMIT 1`, contentColumns)
	var item models.ContentItem
	if err := r.db.GetContext(ctx, &item, query, slugOrID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return &item, nil
}

// SlugExists reports whether any content item already uses the slug.
func (r *ContentRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM content_items WHERE slug = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("check content slug: %w", err)
	}
	return exists, nil
}

// List returns content items matching the filter with a total count.
func (r *ContentRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, int, error) {
	baseQuery := `FROM content_items c JOIN categories cat ON cat.id = c.category_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("c.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("c.category_id = $%d", len(args)+1))
		args = append(args, filter.CategoryID)
	}
	if filter.CategorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("cat.slug = $%d", len(args)+1))
		args = append(args, filter.CategorySlug)
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(c.tags)", len(args)+1))
		args = append(args, filter.Tag)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.title) LIKE $%d OR LOWER(c.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.ApprovedOnly {
		conditions = append(conditions, "c.is_approved = TRUE")
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("c.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.LikedBy != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM likes l WHERE l.content_id = c.id AND l.user_id = $%d)", len(args)+1))
		args = append(args, filter.LikedBy)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at": "c.created_at",
		"downloads":  "c.downloads",
		"title":      "c.title",
		"likes":      "like_count",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "c.created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	// Secondary sort on id keeps pages stable when the primary key ties.
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, c.id ASC LIMIT %d OFFSET %d",
		contentColumns, baseQuery, sortColumn, sortOrder, pageSize, offset)

	var items []models.ContentItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list content: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count content: %w", err)
	}

	return items, total, nil
}

// Update updates mutable fields of a content item.
func (r *ContentRepository) Update(ctx context.Context, item *models.ContentItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE content_items SET
	 slug = :slug, title = :title, description = :description, tags = :tags,
	 category_id = :category_id, copyright_info = :copyright_info, is_approved = :is_approved,
	 meta_title = :meta_title, meta_description = :meta_description, meta_keywords = :meta_keywords,
	 meta_image = :meta_image, no_index = :no_index, include_in_sitemap = :include_in_sitemap,
	 updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update content item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check content update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a content item. Likes cascade at the database level.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM content_items WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check content delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordDownload increments the download counter in a single statement and
// returns the asset URL with the new count. Concurrent calls never lose
// increments because the add happens inside the UPDATE.
func (r *ContentRepository) RecordDownload(ctx context.Context, id string) (*models.DownloadReceipt, error) {
	const query = `UPDATE content_items SET downloads = downloads + 1 WHERE id = $1 AND is_approved = TRUE RETURNING url, downloads`
	var receipt models.DownloadReceipt
	if err := r.db.GetContext(ctx, &receipt, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("record download: %w", err)
	}
	return &receipt, nil
}

// CountByCategory returns how many items reference a category.
func (r *ContentRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	const query = `SELECT COUNT(*) FROM content_items WHERE category_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, categoryID); err != nil {
		return 0, fmt.Errorf("count content by category: %w", err)
	}
	return count, nil
}

// ListForSitemap returns approved, sitemap-eligible items.
func (r *ContentRepository) ListForSitemap(ctx context.Context) ([]models.SitemapEntry, error) {
	const query = `SELECT id, slug, type, title, url, updated_at FROM content_items
	WHERE is_approved = TRUE AND include_in_sitemap = TRUE AND no_index = FALSE
	ORDER BY updated_at DESC`
	var entries []models.SitemapEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list sitemap entries: %w", err)
	}
	return entries, nil
}

// ListAll returns every content item for export purposes, newest first.
func (r *ContentRepository) ListAll(ctx context.Context) ([]models.ContentItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM content_items c JOIN categories cat ON cat.id = c.category_id ORDER BY c.created_at DESC, c.id ASC`, contentColumns)
	var items []models.ContentItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all content: %w", err)
	}
	return items, nil
}

// CatalogStats aggregates counters used on the admin dashboard.
type CatalogStats struct {
	TotalItems      int64 `db:"total_items" json:"total_items"`
	PendingItems    int64 `db:"pending_items" json:"pending_items"`
	TotalWallpapers int64 `db:"total_wallpapers" json:"total_wallpapers"`
	TotalRingtones  int64 `db:"total_ringtones" json:"total_ringtones"`
	TotalDownloads  int64 `db:"total_downloads" json:"total_downloads"`
	TotalLikes      int64 `db:"total_likes" json:"total_likes"`
}

// Stats computes catalog-wide aggregates in one query.
func (r *ContentRepository) Stats(ctx context.Context) (*CatalogStats, error) {
	const query = `SELECT
	 COUNT(*) AS total_items,
	 COUNT(*) FILTER (WHERE NOT is_approved) AS pending_items,
	 COUNT(*) FILTER (WHERE type = 'wallpapers') AS total_wallpapers,
	 COUNT(*) FILTER (WHERE type = 'ringtones') AS total_ringtones,
	 COALESCE(SUM(downloads), 0) AS total_downloads,
	 (SELECT COUNT(*) FROM likes) AS total_likes
	FROM content_items`
	var stats CatalogStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	return &stats, nil
}
