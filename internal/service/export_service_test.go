package service

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/export"
	"github.com/ringbuz/ringbuz-api/pkg/storage"
)

type mockExportContent struct {
	items []models.ContentItem
}

func (m *mockExportContent) ListAll(ctx context.Context) ([]models.ContentItem, error) {
	return m.items, nil
}

type mockExportJobs struct {
	jobs map[string]*models.ExportJob
}

func newMockExportJobs() *mockExportJobs {
	return &mockExportJobs{jobs: make(map[string]*models.ExportJob)}
}

func (m *mockExportJobs) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockExportJobs) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (m *mockExportJobs) UpdateStatus(ctx context.Context, job *models.ExportJob) error {
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *mockExportJobs) List(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var out []models.ExportJob
	for _, job := range m.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func newExportService(t *testing.T, content *mockExportContent, repo *mockExportJobs) *ExportService {
	t.Helper()
	fileStore, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(content, repo, fileStore, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
}

func sampleCatalog() []models.ContentItem {
	return []models.ContentItem{
		{
			ID:           "i1",
			Type:         models.ContentTypeWallpapers,
			Title:        "Sunset",
			CategoryName: "Nature",
			Tags:         []string{"sky", "sea"},
			IsApproved:   true,
			Downloads:    12,
			FileSize:     2048,
			CreatedAt:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportRunRendersCSV(t *testing.T) {
	repo := newMockExportJobs()
	svc := newExportService(t, &mockExportContent{items: sampleCatalog()}, repo)

	job := &models.ExportJob{Format: string(export.FormatCSV), Status: models.ExportStatusPending, RequestedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), job))

	err := svc.run(context.Background(), job.ID)
	require.NoError(t, err)

	stored := repo.jobs[job.ID]
	assert.Equal(t, models.ExportStatusCompleted, stored.Status)
	require.NotNil(t, stored.DownloadURL)
	assert.Contains(t, *stored.DownloadURL, "/api/v1/admin/exports/download/")
	require.NotNil(t, stored.FilePath)
	assert.True(t, strings.HasSuffix(*stored.FilePath, ".csv"))
}

func TestExportDownloadRoundTrip(t *testing.T) {
	repo := newMockExportJobs()
	svc := newExportService(t, &mockExportContent{items: sampleCatalog()}, repo)

	job := &models.ExportJob{Format: string(export.FormatCSV), Status: models.ExportStatusPending, RequestedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NoError(t, svc.run(context.Background(), job.ID))

	url := *repo.jobs[job.ID].DownloadURL
	token := url[strings.LastIndex(url, "/")+1:]

	download, err := svc.Download(token)
	require.NoError(t, err)
	defer download.File.Close()

	data, err := os.ReadFile(download.File.Name())
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "Sunset")
	assert.Contains(t, body, "sky|sea")
}

func TestExportRequestRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(t, &mockExportContent{}, newMockExportJobs())
	_, err := svc.Request(context.Background(), export.Format("xlsx"), adminClaims())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportRequestAdminOnly(t *testing.T) {
	svc := newExportService(t, &mockExportContent{}, newMockExportJobs())
	_, err := svc.Request(context.Background(), export.FormatCSV, userClaims("u1"))
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestExportRunRendersPDF(t *testing.T) {
	repo := newMockExportJobs()
	svc := newExportService(t, &mockExportContent{items: sampleCatalog()}, repo)

	job := &models.ExportJob{Format: string(export.FormatPDF), Status: models.ExportStatusPending, RequestedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NoError(t, svc.run(context.Background(), job.ID))
	assert.Equal(t, models.ExportStatusCompleted, repo.jobs[job.ID].Status)
}
