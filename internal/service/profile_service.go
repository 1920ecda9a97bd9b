package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type profileStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ProfileListResult bundles a profile page with its pagination metadata.
type ProfileListResult struct {
	Profiles   []models.Profile  `json:"profiles"`
	Pagination models.Pagination `json:"pagination"`
}

// ProfileService manages account profiles. Role and activation changes are
// restricted to administrators.
type ProfileService struct {
	repo      profileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(repo profileStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger}
}

// Get returns a profile by identifier.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// List returns profiles for the admin account overview.
func (s *ProfileService) List(ctx context.Context, filter models.ProfileFilter, actor *models.JWTClaims) (*ProfileListResult, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &ProfileListResult{
		Profiles:   profiles,
		Pagination: models.Pagination{Page: page, PageSize: pageSize, TotalCount: total},
	}, nil
}

// UpdateSelf applies self-service edits to the caller's own profile.
func (s *ProfileService) UpdateSelf(ctx context.Context, req dto.UpdateProfileRequest, actor *models.JWTClaims) (*models.Profile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	if req.Username != nil && *req.Username != profile.Username {
		if _, err := s.repo.FindByUsername(ctx, *req.Username); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
		profile.Username = *req.Username
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Website != nil {
		profile.Website = req.Website
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return profile, nil
}

// AdminUpdate changes role or activation for another account. Only
// administrators may call this, and they cannot demote themselves.
func (s *ProfileService) AdminUpdate(ctx context.Context, id string, req dto.AdminUpdateProfileRequest, actor *models.JWTClaims) (*models.Profile, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if req.Role != nil && *req.Role != models.RoleUser && *req.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if id == actor.UserID && req.Role != nil && *req.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot demote own account")
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	oldRole := profile.Role
	if req.Role != nil {
		profile.Role = *req.Role
	}
	if req.Active != nil {
		profile.Active = *req.Active
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	if req.Role != nil && oldRole != profile.Role {
		if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actor.UserID,
			Action:     models.AuditActionRoleChange,
			Resource:   "profile",
			ResourceID: &profile.ID,
			OldValues:  []byte(fmt.Sprintf(`{"role":%q}`, oldRole)),
			NewValues:  []byte(fmt.Sprintf(`{"role":%q}`, profile.Role)),
		}); err != nil {
			s.logger.Warn("failed to record role change audit log", zap.Error(err))
		}
	}
	return profile, nil
}
