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

type mockCategoryStore struct {
	categories map[string]*models.Category
	deleted    []string
}

func newMockCategoryStore(categories ...*models.Category) *mockCategoryStore {
	store := &mockCategoryStore{categories: make(map[string]*models.Category)}
	for _, c := range categories {
		store.categories[c.ID] = c
	}
	return store
}

func (m *mockCategoryStore) Create(ctx context.Context, category *models.Category) error {
	category.ID = "cat-new"
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return category, nil
}

func (m *mockCategoryStore) FindBySlug(ctx context.Context, contentType models.ContentType, slug string) (*models.Category, error) {
	for _, c := range m.categories {
		if c.Type == contentType && c.Slug == slug {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCategoryStore) SlugExists(ctx context.Context, contentType models.ContentType, slug string) (bool, error) {
	_, err := m.FindBySlug(ctx, contentType, slug)
	return err == nil, nil
}

func (m *mockCategoryStore) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.categories {
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryStore) Update(ctx context.Context, category *models.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return sql.ErrNoRows
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.categories, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockContentCounter struct {
	counts map[string]int
}

func (m *mockContentCounter) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	return m.counts[categoryID], nil
}

func newCategoryService(store *mockCategoryStore, counts map[string]int) *CategoryService {
	return NewCategoryService(store, &mockContentCounter{counts: counts}, nil, &mockAudit{}, nil, nil)
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	store := newMockCategoryStore()
	svc := newCategoryService(store, nil)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name: "Nature & Landscapes",
		Type: models.ContentTypeWallpapers,
	}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "nature-landscapes", category.Slug)
}

func TestCreateCategoryAdminOnly(t *testing.T) {
	svc := newCategoryService(newMockCategoryStore(), nil)

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name: "Nature",
		Type: models.ContentTypeWallpapers,
	}, userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCreateCategorySlugCollisionAcrossTypeAllowed(t *testing.T) {
	existing := &models.Category{ID: "cat-1", Name: "Pop", Type: models.ContentTypeRingtones, Slug: "pop"}
	store := newMockCategoryStore(existing)
	svc := newCategoryService(store, nil)

	// Same slug under the other content type is fine.
	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name: "Pop",
		Type: models.ContentTypeWallpapers,
	}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "pop", category.Slug)
}

func TestDeleteCategoryRefusedWhileReferenced(t *testing.T) {
	store := newMockCategoryStore(&models.Category{ID: "cat-1", Name: "Nature", Type: models.ContentTypeWallpapers, Slug: "nature"})
	svc := newCategoryService(store, map[string]int{"cat-1": 3})

	err := svc.Delete(context.Background(), "cat-1", adminClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, store.deleted)
}

func TestDeleteEmptyCategory(t *testing.T) {
	store := newMockCategoryStore(&models.Category{ID: "cat-1", Name: "Nature", Type: models.ContentTypeWallpapers, Slug: "nature"})
	svc := newCategoryService(store, nil)

	err := svc.Delete(context.Background(), "cat-1", adminClaims())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1"}, store.deleted)
}

func TestUpdateCategoryKeepsSlug(t *testing.T) {
	store := newMockCategoryStore(&models.Category{ID: "cat-1", Name: "Nature", Type: models.ContentTypeWallpapers, Slug: "nature"})
	svc := newCategoryService(store, nil)

	newName := "Wild Nature"
	category, err := svc.Update(context.Background(), "cat-1", dto.UpdateCategoryRequest{Name: &newName}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, "Wild Nature", category.Name)
	assert.Equal(t, "nature", category.Slug)
}
