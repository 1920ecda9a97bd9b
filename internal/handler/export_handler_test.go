package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/middleware"
	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/service"
	"github.com/ringbuz/ringbuz-api/pkg/export"
)

type exportServiceMock struct {
	job         *models.ExportJob
	jobs        []models.ExportJob
	requestErr  error
	download    *service.ExportDownload
	downloadErr error
	lastFormat  export.Format
}

func (m *exportServiceMock) Request(ctx context.Context, format export.Format, actor *models.JWTClaims) (*models.ExportJob, error) {
	m.lastFormat = format
	return m.job, m.requestErr
}

func (m *exportServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ExportJob, error) {
	return m.job, nil
}

func (m *exportServiceMock) List(ctx context.Context, limit int, actor *models.JWTClaims) ([]models.ExportJob, error) {
	return m.jobs, nil
}

func (m *exportServiceMock) Download(token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func TestExportHandlerRequestNormalizesFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{job: &models.ExportJob{ID: "job-1", Status: models.ExportStatusPending}}
	handler := NewExportHandler(mockSvc)

	payload, _ := json.Marshal(map[string]string{"format": " CSV "})
	c, w := newGinContext(http.MethodPost, "/admin/exports", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Request(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, export.FormatCSV, mockSvc.lastFormat)
}

func TestExportHandlerRequestMissingFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/admin/exports", []byte(`{}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Request(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerDownloadStreamsFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp("", "catalog*.csv")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	_, _ = file.WriteString("ID,Title\nitem-1,Sunset\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "catalog.csv",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/admin/exports/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "catalog.csv")
	assert.Contains(t, w.Body.String(), "Sunset")
}
