package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestCreateContentItem(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec("INSERT INTO content_items").WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.ContentItem{
		Type:       models.ContentTypeWallpapers,
		Title:      "Sunset",
		CategoryID: "cat-1",
		URL:        "https://cdn.example.com/wallpapers/a.jpg",
		UserID:     "user-1",
	}
	err := repo.Create(context.Background(), item)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDownload(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"url", "downloads"}).
		AddRow("https://cdn.example.com/ringtones/b.mp3", int64(42))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE content_items SET downloads = downloads + 1 WHERE id = $1 AND is_approved = TRUE RETURNING url, downloads")).
		WithArgs("item-1").
		WillReturnRows(rows)

	receipt, err := repo.RecordDownload(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), receipt.Downloads)
	assert.Equal(t, "https://cdn.example.com/ringtones/b.mp3", receipt.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDownloadMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery("UPDATE content_items SET downloads").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.RecordDownload(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordDownloadSkipsUnapproved(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND is_approved = TRUE")).
		WithArgs("pending-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.RecordDownload(context.Background(), "pending-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContentFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "type", "title", "category_id", "url", "user_id", "is_approved", "downloads", "created_at", "updated_at", "category_name", "category_slug", "like_count"}).
		AddRow("1", "wallpapers", "Sunset", "cat-1", "https://cdn.example.com/a.jpg", "u1", true, int64(3), now, now, "Nature", "nature", int64(2))
	mock.ExpectQuery("SELECT (.+) FROM content_items c JOIN categories cat ON cat.id = c.category_id WHERE 1=1 AND c.type = \\$1 AND c.is_approved = TRUE ORDER BY c.downloads DESC, c.id ASC LIMIT 20 OFFSET 0").
		WithArgs(models.ContentTypeWallpapers).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM content_items").
		WithArgs(models.ContentTypeWallpapers).
		WillReturnRows(countRows)

	items, total, err := repo.List(context.Background(), models.ContentFilter{
		Type:         models.ContentTypeWallpapers,
		ApprovedOnly: true,
		SortBy:       "downloads",
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Nature", items[0].CategoryName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContentRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	listRows := sqlmock.NewRows([]string{"id"})
	mock.ExpectQuery("ORDER BY c.created_at DESC, c.id ASC").WillReturnRows(listRows)
	countRows := sqlmock.NewRows([]string{"count"}).AddRow(0)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(countRows)

	_, _, err := repo.List(context.Background(), models.ContentFilter{SortBy: "downloads; DROP TABLE content_items"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContentMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM content_items WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCountByCategory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(7)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM content_items WHERE category_id = $1")).
		WithArgs("cat-1").
		WillReturnRows(rows)

	count, err := repo.CountByCategory(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
