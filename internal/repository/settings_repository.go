package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ringbuz/ringbuz-api/internal/models"
)

// SettingsRepository stores site-wide configuration records keyed by name.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the setting stored under key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*models.SiteSetting, error) {
	const query = `SELECT key, value, updated_at FROM site_settings WHERE key = $1 LIMIT 1`
	var setting models.SiteSetting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return &setting, nil
}

// Upsert writes a setting, replacing any existing value under the key.
func (r *SettingsRepository) Upsert(ctx context.Context, key string, value json.RawMessage) error {
	const query = `INSERT INTO site_settings (key, value, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// List returns all settings.
func (r *SettingsRepository) List(ctx context.Context) ([]models.SiteSetting, error) {
	const query = `SELECT key, value, updated_at FROM site_settings ORDER BY key ASC`
	var settings []models.SiteSetting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}
