package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type settingsStore interface {
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) error
	List(ctx context.Context) ([]models.SiteSetting, error)
}

var knownSettingKeys = map[string]struct{}{
	models.SettingSEODefaults: {},
	models.SettingRobotsExtra: {},
	models.SettingAdsTxt:      {},
}

// SettingsService manages site-wide configuration. Reads are public where a
// setting feeds public artifacts; writes are admin only.
type SettingsService struct {
	repo   settingsStore
	logger *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(repo settingsStore, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// List returns all settings for the admin panel.
func (s *SettingsService) List(ctx context.Context, actor *models.JWTClaims) ([]models.SiteSetting, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	return settings, nil
}

// Get returns one setting by key.
func (s *SettingsService) Get(ctx context.Context, key string, actor *models.JWTClaims) (*models.SiteSetting, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	return setting, nil
}

// Update writes a setting value. Unknown keys are rejected and the payload
// has to be valid JSON of the shape the key expects.
func (s *SettingsService) Update(ctx context.Context, key string, value json.RawMessage, actor *models.JWTClaims) (*models.SiteSetting, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if _, known := knownSettingKeys[key]; !known {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown setting key")
	}
	if !json.Valid(value) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "value is not valid JSON")
	}

	switch key {
	case models.SettingSEODefaults:
		var defaults models.SEODefaults
		if err := json.Unmarshal(value, &defaults); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "seo defaults must be an object with title, description, keywords and image")
		}
	case models.SettingRobotsExtra, models.SettingAdsTxt:
		var body string
		if err := json.Unmarshal(value, &body); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "value must be a JSON string")
		}
	}

	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}
	return s.repo.Get(ctx, key)
}

// SEODefaults returns the configured defaults, or zero values when unset.
func (s *SettingsService) SEODefaults(ctx context.Context) models.SEODefaults {
	var defaults models.SEODefaults
	setting, err := s.repo.Get(ctx, models.SettingSEODefaults)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load seo defaults", zap.Error(err))
		}
		return defaults
	}
	if err := json.Unmarshal(setting.Value, &defaults); err != nil {
		s.logger.Warn("seo defaults are malformed", zap.Error(err))
	}
	return defaults
}
