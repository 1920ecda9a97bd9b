package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// LikeRepository stores per-profile likes of content items.
type LikeRepository struct {
	db *sqlx.DB
}

// NewLikeRepository creates a new instance of LikeRepository.
func NewLikeRepository(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records a like. Repeating an existing like is a no-op.
func (r *LikeRepository) Add(ctx context.Context, contentID, userID string) error {
	const query = `INSERT INTO likes (content_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (content_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, contentID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

// Remove deletes a like. Removing a non-existent like is a no-op.
func (r *LikeRepository) Remove(ctx context.Context, contentID, userID string) error {
	const query = `DELETE FROM likes WHERE content_id = $1 AND user_id = $2`
	if _, err := r.db.ExecContext(ctx, query, contentID, userID); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

// Exists reports whether the profile already liked the item.
func (r *LikeRepository) Exists(ctx context.Context, contentID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE content_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, contentID, userID); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

// Count returns the number of likes for a content item.
func (r *LikeRepository) Count(ctx context.Context, contentID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM likes WHERE content_id = $1`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, contentID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
