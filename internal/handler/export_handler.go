package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/service"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/export"
	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type exportService interface {
	Request(ctx context.Context, format export.Format, actor *models.JWTClaims) (*models.ExportJob, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ExportJob, error)
	List(ctx context.Context, limit int, actor *models.JWTClaims) ([]models.ExportJob, error)
	Download(token string) (*service.ExportDownload, error)
}

// ExportHandler manages catalog export HTTP endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Request godoc
// @Summary Request a catalog export
// @Description Queues an asynchronous CSV or PDF export of the catalog
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Export format"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Request(c *gin.Context) {
	var payload struct {
		Format string `json:"format" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format is required"))
		return
	}
	format := export.Format(strings.ToLower(strings.TrimSpace(payload.Format)))
	job, err := h.service.Request(c.Request.Context(), format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	job, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// List godoc
// @Summary List recent export jobs
// @Tags Exports
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {object} response.Envelope
// @Router /admin/exports [get]
func (h *ExportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.service.List(c.Request.Context(), limit, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}

// Download godoc
// @Summary Download a rendered export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /admin/exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(result.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, result.File, nil)
}
