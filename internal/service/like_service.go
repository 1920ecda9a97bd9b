package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type likeStore interface {
	Add(ctx context.Context, contentID, userID string) error
	Remove(ctx context.Context, contentID, userID string) error
	Exists(ctx context.Context, contentID, userID string) (bool, error)
	Count(ctx context.Context, contentID string) (int64, error)
}

type likeContentResolver interface {
	FindBySlugOrID(ctx context.Context, slugOrID string) (*models.ContentItem, error)
}

// LikeStatus reports the caller's like state and the total for an item.
type LikeStatus struct {
	ContentID string `json:"content_id"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"like_count"`
}

// LikeService toggles per-profile likes on approved content.
type LikeService struct {
	repo    likeStore
	content likeContentResolver
	logger  *zap.Logger
}

// NewLikeService constructs the service.
func NewLikeService(repo likeStore, content likeContentResolver, logger *zap.Logger) *LikeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LikeService{repo: repo, content: content, logger: logger}
}

// Like records a like. Repeated likes are idempotent.
func (s *LikeService) Like(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*LikeStatus, error) {
	item, err := s.resolve(ctx, slugOrID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, item.ID, actor.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record like")
	}
	return s.status(ctx, item.ID, actor.UserID)
}

// Unlike removes a like. Removing an absent like is idempotent.
func (s *LikeService) Unlike(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*LikeStatus, error) {
	item, err := s.resolve(ctx, slugOrID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Remove(ctx, item.ID, actor.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove like")
	}
	return s.status(ctx, item.ID, actor.UserID)
}

func (s *LikeService) resolve(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*models.ContentItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	item, err := s.content.FindBySlugOrID(ctx, slugOrID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if !item.IsApproved {
		return nil, appErrors.ErrNotFound
	}
	return item, nil
}

func (s *LikeService) status(ctx context.Context, contentID, userID string) (*LikeStatus, error) {
	liked, err := s.repo.Exists(ctx, contentID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check like")
	}
	count, err := s.repo.Count(ctx, contentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count likes")
	}
	return &LikeStatus{ContentID: contentID, Liked: liked, LikeCount: count}, nil
}
