package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/jobs"
)

func jobFor(key string) jobs.Job {
	return jobs.Job{Type: "storage.gc", Payload: key}
}

type mockContentStore struct {
	mu        sync.Mutex
	items     map[string]*models.ContentItem
	downloads int64
	deleted   []string
	updated   *models.ContentItem
	listCalls int
}

func newMockContentStore(items ...*models.ContentItem) *mockContentStore {
	store := &mockContentStore{items: make(map[string]*models.ContentItem)}
	for _, item := range items {
		store.items[item.ID] = item
	}
	return store
}

func (m *mockContentStore) FindByID(ctx context.Context, id string) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (m *mockContentStore) FindBySlugOrID(ctx context.Context, slugOrID string) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == slugOrID || (item.Slug != nil && *item.Slug == slugOrID) {
			clone := *item
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockContentStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.Slug != nil && *item.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockContentStore) List(ctx context.Context, filter models.ContentFilter) ([]models.ContentItem, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var out []models.ContentItem
	for _, item := range m.items {
		if filter.ApprovedOnly && !item.IsApproved {
			continue
		}
		if filter.UserID != "" && item.UserID != filter.UserID {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (m *mockContentStore) Update(ctx context.Context, item *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *item
	m.items[item.ID] = &clone
	m.updated = &clone
	return nil
}

func (m *mockContentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockContentStore) RecordDownload(ctx context.Context, id string) (*models.DownloadReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	m.downloads++
	return &models.DownloadReceipt{URL: item.URL, Downloads: m.downloads}, nil
}

type mockCategoryResolver struct {
	categories map[string]*models.Category
}

func (m *mockCategoryResolver) FindByID(ctx context.Context, id string) (*models.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return category, nil
}

type mockObjectRemover struct {
	deleted []string
	mu      sync.Mutex
}

func (m *mockObjectRemover) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) DeleteByPattern(ctx context.Context, pattern string) error { return nil }

type mockAudit struct {
	logs []*models.AuditLog
	mu   sync.Mutex
}

func (m *mockAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, Username: "admin"}
}

func userClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleUser, Username: "user"}
}

func approvedItem(id, owner string) *models.ContentItem {
	return &models.ContentItem{
		ID:         id,
		Slug:       strPtr(id + "-slug"),
		Type:       models.ContentTypeWallpapers,
		Title:      "Item " + id,
		CategoryID: "cat-1",
		URL:        "https://cdn.example.com/" + id + ".jpg",
		UserID:     owner,
		IsApproved: true,
	}
}

func newContentService(store *mockContentStore, audit *mockAudit, remover *mockObjectRemover) *ContentService {
	return NewContentService(store, &mockCategoryResolver{categories: map[string]*models.Category{
		"cat-1": {ID: "cat-1", Type: models.ContentTypeWallpapers, Name: "Nature"},
	}}, remover, noopCache{}, nil, audit, nil, nil, ContentServiceConfig{})
}

func TestListHidesPendingFromPublic(t *testing.T) {
	pending := approvedItem("pending", "u1")
	pending.IsApproved = false
	store := newMockContentStore(approvedItem("a", "u1"), pending)
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	result, err := svc.List(context.Background(), dto.ContentListQuery{}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "a", result.Items[0].ID)
}

func TestListPendingRequiresAdmin(t *testing.T) {
	store := newMockContentStore()
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	_, err := svc.List(context.Background(), dto.ContentListQuery{Pending: true}, userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	_, err = svc.List(context.Background(), dto.ContentListQuery{Pending: true}, adminClaims())
	assert.NoError(t, err)
}

func TestGetPendingVisibleToOwnerAndAdmin(t *testing.T) {
	pending := approvedItem("p1", "u1")
	pending.IsApproved = false
	store := newMockContentStore(pending)
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	_, err := svc.Get(context.Background(), "p1", nil)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	_, err = svc.Get(context.Background(), "p1", userClaims("u1"))
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), "p1", adminClaims())
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), "p1", userClaims("other"))
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUpdateApprovalIsAdminOnly(t *testing.T) {
	item := approvedItem("a", "u1")
	item.IsApproved = false
	store := newMockContentStore(item)
	audit := &mockAudit{}
	svc := newContentService(store, audit, &mockObjectRemover{})

	_, err := svc.Update(context.Background(), "a", dto.UpdateContentRequest{IsApproved: boolPtr(true)}, userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	updated, err := svc.Update(context.Background(), "a", dto.UpdateContentRequest{IsApproved: boolPtr(true)}, adminClaims())
	require.NoError(t, err)
	assert.True(t, updated.IsApproved)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionContentApprove, audit.logs[0].Action)
}

func TestUpdateTitleRederivesSlug(t *testing.T) {
	item := approvedItem("a", "u1")
	store := newMockContentStore(item)
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	updated, err := svc.Update(context.Background(), "a", dto.UpdateContentRequest{Title: strPtr("Winter Forest")}, userClaims("u1"))
	require.NoError(t, err)
	require.NotNil(t, updated.Slug)
	assert.Equal(t, "winter-forest", *updated.Slug)
}

func TestUpdateRejectsCategoryTypeMismatch(t *testing.T) {
	item := approvedItem("a", "u1")
	store := newMockContentStore(item)
	svc := NewContentService(store, &mockCategoryResolver{categories: map[string]*models.Category{
		"cat-rt": {ID: "cat-rt", Type: models.ContentTypeRingtones, Name: "Pop"},
	}}, &mockObjectRemover{}, noopCache{}, nil, &mockAudit{}, nil, nil, ContentServiceConfig{})

	_, err := svc.Update(context.Background(), "a", dto.UpdateContentRequest{CategoryID: strPtr("cat-rt")}, adminClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	item := approvedItem("a", "u1")
	item.StorageKey = strPtr("wallpapers/key.jpg")
	store := newMockContentStore(item)
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	err := svc.Delete(context.Background(), "a-slug", userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	err = svc.Delete(context.Background(), "a-slug", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, store.deleted)
}

func TestRecordDownloadOnlyApproved(t *testing.T) {
	pending := approvedItem("p1", "u1")
	pending.IsApproved = false
	store := newMockContentStore(approvedItem("a", "u1"), pending)
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	receipt, err := svc.RecordDownload(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), receipt.Downloads)
	assert.NotEmpty(t, receipt.URL)

	_, err = svc.RecordDownload(context.Background(), "p1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRecordDownloadConcurrent(t *testing.T) {
	store := newMockContentStore(approvedItem("a", "u1"))
	svc := newContentService(store, &mockAudit{}, &mockObjectRemover{})

	const workers = 32
	var wg sync.WaitGroup
	var failures int64
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.RecordDownload(context.Background(), "a"); err != nil {
				atomic.AddInt64(&failures, 1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures)
	assert.Equal(t, int64(workers), store.downloads)
}

func TestGCHandlerDeletesObject(t *testing.T) {
	remover := &mockObjectRemover{}
	store := newMockContentStore()
	svc := newContentService(store, &mockAudit{}, remover)

	handler := svc.GCHandler()
	err := handler(context.Background(), jobFor("wallpapers/orphan.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []string{"wallpapers/orphan.jpg"}, remover.deleted)
}
