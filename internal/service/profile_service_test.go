package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type mockProfileStore struct {
	profiles  map[string]*models.Profile
	auditLogs []*models.AuditLog
}

func newMockProfileStore(profiles ...*models.Profile) *mockProfileStore {
	store := &mockProfileStore{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		store.profiles[p.ID] = p
	}
	return store
}

func (m *mockProfileStore) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *profile
	return &clone, nil
}

func (m *mockProfileStore) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Username == username {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := m.profiles[profile.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *profile
	m.profiles[profile.ID] = &clone
	return nil
}

func (m *mockProfileStore) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	var out []models.Profile
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProfileStore) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func roleP(r models.UserRole) *models.UserRole { return &r }

func TestAdminUpdatePromotesAndAudits(t *testing.T) {
	store := newMockProfileStore(
		&models.Profile{ID: "admin-1", Username: "admin", Role: models.RoleAdmin, Active: true},
		&models.Profile{ID: "u1", Username: "alice", Role: models.RoleUser, Active: true},
	)
	svc := NewProfileService(store, nil, nil)

	profile, err := svc.AdminUpdate(context.Background(), "u1", dto.AdminUpdateProfileRequest{Role: roleP(models.RoleAdmin)}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, profile.Role)
	require.Len(t, store.auditLogs, 1)
	assert.Equal(t, models.AuditActionRoleChange, store.auditLogs[0].Action)
}

func TestAdminUpdateRejectsNonAdmin(t *testing.T) {
	store := newMockProfileStore(&models.Profile{ID: "u1", Username: "alice", Role: models.RoleUser})
	svc := NewProfileService(store, nil, nil)

	_, err := svc.AdminUpdate(context.Background(), "u1", dto.AdminUpdateProfileRequest{Role: roleP(models.RoleAdmin)}, userClaims("u2"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestAdminUpdateCannotSelfDemote(t *testing.T) {
	store := newMockProfileStore(&models.Profile{ID: "admin-1", Username: "admin", Role: models.RoleAdmin, Active: true})
	svc := NewProfileService(store, nil, nil)

	_, err := svc.AdminUpdate(context.Background(), "admin-1", dto.AdminUpdateProfileRequest{Role: roleP(models.RoleUser)}, adminClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUpdateSelfUsernameConflict(t *testing.T) {
	store := newMockProfileStore(
		&models.Profile{ID: "u1", Username: "alice", Role: models.RoleUser, Active: true},
		&models.Profile{ID: "u2", Username: "bob", Role: models.RoleUser, Active: true},
	)
	svc := NewProfileService(store, nil, nil)

	taken := "bob"
	_, err := svc.UpdateSelf(context.Background(), dto.UpdateProfileRequest{Username: &taken}, userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestListProfilesAdminOnly(t *testing.T) {
	store := newMockProfileStore(&models.Profile{ID: "u1", Username: "alice"})
	svc := NewProfileService(store, nil, nil)

	_, err := svc.List(context.Background(), models.ProfileFilter{}, userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	result, err := svc.List(context.Background(), models.ProfileFilter{}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.TotalCount)
}
