package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type mockAuthRepo struct {
	byEmail       *models.Profile
	byUsername    *models.Profile
	byID          *models.Profile
	created       *models.Profile
	refreshTokens map[string]*models.RefreshToken
	auditLogs     []*models.AuditLog
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if m.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmail, nil
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	if m.byUsername == nil {
		return nil, sql.ErrNoRows
	}
	return m.byUsername, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, profile *models.Profile) error {
	profile.ID = "new-profile"
	m.created = profile
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.byID != nil && m.byID.ID == id {
		m.byID.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "ringbuz-test",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignupIssuesTokens(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleUser, resp.Profile.Role)
	require.NotNil(t, repo.created)
	assert.True(t, repo.created.Active)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "new-profile", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{byEmail: &models.Profile{ID: "p1", Email: "alice@example.com"}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{byEmail: &models.Profile{
		ID:           "p1",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "correct"),
		Active:       true,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &mockAuthRepo{byEmail: &models.Profile{
		ID:           "p1",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "hunter22"),
		Active:       false,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	profile := &models.Profile{
		ID:           "p1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "hunter22"),
		Role:         models.RoleUser,
		Active:       true,
	}
	repo := &mockAuthRepo{byEmail: profile, byID: profile}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)

	// The rotated-out token cannot be used again.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, testAuthConfig())
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
