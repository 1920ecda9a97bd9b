package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/middleware"
	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/service"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type contentServiceMock struct {
	listResp    *service.ContentListResult
	listQuery   dto.ContentListQuery
	getResp     *models.ContentItem
	getErr      error
	updateResp  *models.ContentItem
	updateErr   error
	deleteErr   error
	receipt     *models.DownloadReceipt
	downloadErr error
}

func (m *contentServiceMock) List(ctx context.Context, query dto.ContentListQuery, actor *models.JWTClaims) (*service.ContentListResult, error) {
	m.listQuery = query
	return m.listResp, nil
}

func (m *contentServiceMock) Get(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*models.ContentItem, error) {
	return m.getResp, m.getErr
}

func (m *contentServiceMock) Update(ctx context.Context, slugOrID string, req dto.UpdateContentRequest, actor *models.JWTClaims) (*models.ContentItem, error) {
	return m.updateResp, m.updateErr
}

func (m *contentServiceMock) Delete(ctx context.Context, slugOrID string, actor *models.JWTClaims) error {
	return m.deleteErr
}

func (m *contentServiceMock) RecordDownload(ctx context.Context, slugOrID string) (*models.DownloadReceipt, error) {
	return m.receipt, m.downloadErr
}

type uploadServiceMock struct {
	fileResp *models.ContentItem
	fileErr  error
	urlResp  *models.ContentItem
	urlErr   error
	lastFile service.ContentUpload
	fromURL  bool
}

func (m *uploadServiceMock) CreateFromFile(ctx context.Context, req dto.CreateContentRequest, upload service.ContentUpload, actor *models.JWTClaims) (*models.ContentItem, error) {
	m.lastFile = upload
	return m.fileResp, m.fileErr
}

func (m *uploadServiceMock) CreateFromURL(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentItem, error) {
	m.fromURL = true
	return m.urlResp, m.urlErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestContentHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &contentServiceMock{
		listResp: &service.ContentListResult{
			Items:      []models.ContentItem{{ID: "item-1", Title: "Sunset"}},
			Pagination: models.Pagination{Page: 1, PageSize: 20, TotalCount: 1},
		},
	}
	handler := NewContentHandler(mockSvc, &uploadServiceMock{}, nil)

	c, w := newGinContext(http.MethodGet, "/content?type=wallpapers&category=nature&sort_by=downloads", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ContentTypeWallpapers, mockSvc.listQuery.Type)
	assert.Equal(t, "nature", mockSvc.listQuery.Category)
	assert.Equal(t, "downloads", mockSvc.listQuery.SortBy)
	assert.Contains(t, w.Body.String(), "pagination")
}

func TestContentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &contentServiceMock{getErr: appErrors.ErrNotFound}
	handler := NewContentHandler(mockSvc, &uploadServiceMock{}, nil)

	c, w := newGinContext(http.MethodGet, "/content/missing", nil)
	c.Params = gin.Params{{Key: "slug", Value: "missing"}}
	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentHandlerUploadMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uploads := &uploadServiceMock{fileResp: &models.ContentItem{ID: "item-1", Type: models.ContentTypeWallpapers}}
	handler := NewContentHandler(&contentServiceMock{}, uploads, nil)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("type", "wallpapers"))
	require.NoError(t, form.WriteField("title", "Sunset"))
	require.NoError(t, form.WriteField("category_id", "cat-1"))
	part, err := form.CreateFormFile("file", "sunset.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/content", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})

	handler.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sunset.jpg", uploads.lastFile.Filename)
	assert.False(t, uploads.fromURL)
}

func TestContentHandlerUploadFallsBackToURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uploads := &uploadServiceMock{urlResp: &models.ContentItem{ID: "item-2", Type: models.ContentTypeRingtones}}
	handler := NewContentHandler(&contentServiceMock{}, uploads, nil)

	payload, _ := json.Marshal(dto.CreateContentRequest{
		Type:       models.ContentTypeRingtones,
		Title:      "Morning Chime",
		CategoryID: "cat-2",
		URL:        "https://cdn.example.com/chime.mp3",
	})
	c, w := newGinContext(http.MethodPost, "/content", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})

	handler.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, uploads.fromURL)
}

func TestContentHandlerUploadRequiresFileOrURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(&contentServiceMock{}, &uploadServiceMock{}, nil)

	payload, _ := json.Marshal(dto.CreateContentRequest{
		Type:       models.ContentTypeWallpapers,
		Title:      "Sunset",
		CategoryID: "cat-1",
	})
	c, w := newGinContext(http.MethodPost, "/content", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})

	handler.Upload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentHandlerUploadRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(&contentServiceMock{}, &uploadServiceMock{}, nil)

	c, w := newGinContext(http.MethodPost, "/content", []byte(`{}`))
	handler.Upload(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContentHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &contentServiceMock{
		receipt: &models.DownloadReceipt{URL: "https://cdn.example.com/sunset.jpg", Downloads: 42},
	}
	handler := NewContentHandler(mockSvc, &uploadServiceMock{}, nil)

	c, w := newGinContext(http.MethodGet, "/content/sunset/download", nil)
	c.Params = gin.Params{{Key: "slug", Value: "sunset"}}
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\"downloads\":42")
}
