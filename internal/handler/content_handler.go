package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/service"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type contentService interface {
	List(ctx context.Context, query dto.ContentListQuery, actor *models.JWTClaims) (*service.ContentListResult, error)
	Get(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*models.ContentItem, error)
	Update(ctx context.Context, slugOrID string, req dto.UpdateContentRequest, actor *models.JWTClaims) (*models.ContentItem, error)
	Delete(ctx context.Context, slugOrID string, actor *models.JWTClaims) error
	RecordDownload(ctx context.Context, slugOrID string) (*models.DownloadReceipt, error)
}

type uploadService interface {
	CreateFromFile(ctx context.Context, req dto.CreateContentRequest, upload service.ContentUpload, actor *models.JWTClaims) (*models.ContentItem, error)
	CreateFromURL(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentItem, error)
}

// ContentHandler manages content catalog HTTP endpoints.
type ContentHandler struct {
	content contentService
	uploads uploadService
	metrics *service.MetricsService
}

// NewContentHandler constructs the handler.
func NewContentHandler(content contentService, uploads uploadService, metrics *service.MetricsService) *ContentHandler {
	return &ContentHandler{content: content, uploads: uploads, metrics: metrics}
}

// List godoc
// @Summary List content items
// @Tags Content
// @Produce json
// @Param type query string false "Content type (wallpapers|ringtones)"
// @Param category query string false "Category slug"
// @Param tag query string false "Tag filter"
// @Param search query string false "Search term"
// @Param mine query bool false "Only own uploads"
// @Param liked query bool false "Only liked items"
// @Param pending query bool false "Pending moderation (admin)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /content [get]
func (h *ContentHandler) List(c *gin.Context) {
	var query dto.ContentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid listing query"))
		return
	}
	result, err := h.content.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Get godoc
// @Summary Get a content item by slug or ID
// @Tags Content
// @Produce json
// @Param slug path string true "Slug or ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{slug} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.content.Get(c.Request.Context(), c.Param("slug"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Upload godoc
// @Summary Upload a wallpaper or ringtone
// @Description Accepts multipart upload or an external URL reference
// @Tags Content
// @Accept multipart/form-data
// @Produce json
// @Param type formData string true "Content type"
// @Param title formData string true "Title"
// @Param category_id formData string true "Category ID"
// @Param tags formData []string false "Tags (max 5)"
// @Param url formData string false "External URL instead of file"
// @Param file formData file false "Media file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /content [post]
func (h *ContentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateContentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid content payload"))
		return
	}

	fileHeader, fileErr := c.FormFile("file")
	if fileErr != nil {
		if strings.TrimSpace(req.URL) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "either file or url is required"))
			return
		}
		item, err := h.uploads.CreateFromURL(c.Request.Context(), req, claims)
		if err != nil {
			response.Error(c, err)
			return
		}
		h.recordUpload(item)
		response.JSON(c, http.StatusCreated, item, nil)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}
	upload := service.ContentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  reader,
	}
	item, err := h.uploads.CreateFromFile(c.Request.Context(), req, upload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.recordUpload(item)
	response.JSON(c, http.StatusCreated, item, nil)
}

// Update godoc
// @Summary Update content metadata
// @Description Owners edit metadata; approval flips are admin only
// @Tags Content
// @Accept json
// @Produce json
// @Param slug path string true "Slug or ID"
// @Param payload body dto.UpdateContentRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /content/{slug} [patch]
func (h *ContentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid update payload"))
		return
	}
	item, err := h.content.Update(c.Request.Context(), c.Param("slug"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a content item
// @Tags Content
// @Produce json
// @Param slug path string true "Slug or ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /content/{slug} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.content.Delete(c.Request.Context(), c.Param("slug"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Record a download and return the media URL
// @Description Increments the download counter atomically
// @Tags Content
// @Produce json
// @Param slug path string true "Slug or ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{slug}/download [get]
func (h *ContentHandler) Download(c *gin.Context) {
	receipt, err := h.content.RecordDownload(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordDownload(models.ContentType(c.Query("type")))
	}
	response.JSON(c, http.StatusOK, receipt, nil)
}

func (h *ContentHandler) recordUpload(item *models.ContentItem) {
	if h.metrics == nil || item == nil {
		return
	}
	h.metrics.RecordUpload(item.Type)
}
