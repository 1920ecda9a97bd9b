package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/models"
)

func TestCreateCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(1, 1))

	category := &models.Category{Name: "Nature", Type: models.ContentTypeWallpapers, Slug: "nature"}
	err := repo.Create(context.Background(), category)
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCategoryBySlug(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "type", "slug", "created_at", "item_count"}).
		AddRow("cat-1", "Nature", "wallpapers", "nature", now, int64(12))
	mock.ExpectQuery("FROM categories WHERE type = \\$1 AND slug = \\$2 LIMIT 1").
		WithArgs(models.ContentTypeWallpapers, "nature").
		WillReturnRows(rows)

	category, err := repo.FindBySlug(context.Background(), models.ContentTypeWallpapers, "nature")
	require.NoError(t, err)
	assert.Equal(t, "Nature", category.Name)
	assert.Equal(t, int64(12), category.ItemCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategorySlugExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM categories WHERE type = $1 AND slug = $2)")).
		WithArgs(models.ContentTypeRingtones, "pop").
		WillReturnRows(rows)

	exists, err := repo.SlugExists(context.Background(), models.ContentTypeRingtones, "pop")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteCategoryMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
