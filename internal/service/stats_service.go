package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/repository"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type statsContentRepository interface {
	Stats(ctx context.Context) (*repository.CatalogStats, error)
}

// DashboardStats combines catalog aggregates with runtime metrics.
type DashboardStats struct {
	Catalog repository.CatalogStats `json:"catalog"`
	System  models.SystemMetrics    `json:"system"`
}

// StatsService serves the admin dashboard aggregates, cached briefly to keep
// repeated dashboard loads off the database.
type StatsService struct {
	content statsContentRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
}

// NewStatsService constructs the service.
func NewStatsService(content statsContentRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, ttl time.Duration) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatsService{content: content, cache: cache, metrics: metrics, logger: logger, ttl: ttl}
}

// Dashboard returns catalog and system aggregates for admins.
func (s *StatsService) Dashboard(ctx context.Context, actor *models.JWTClaims) (*DashboardStats, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}

	const cacheKey = "stats:dashboard"
	var catalog repository.CatalogStats
	hit, _ := s.cache.Get(ctx, cacheKey, &catalog)
	if !hit {
		stats, err := s.content.Stats(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute catalog stats")
		}
		catalog = *stats
		if err := s.cache.Set(ctx, cacheKey, catalog, s.ttl); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}

	return &DashboardStats{
		Catalog: catalog,
		System:  s.metrics.Snapshot(),
	}, nil
}
