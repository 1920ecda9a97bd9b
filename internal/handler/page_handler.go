package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type pageService interface {
	Get(ctx context.Context, slug string, actor *models.JWTClaims) (*models.Page, error)
	List(ctx context.Context, actor *models.JWTClaims) ([]models.Page, error)
	Create(ctx context.Context, req dto.CreatePageRequest, actor *models.JWTClaims) (*models.Page, error)
	Update(ctx context.Context, slug string, req dto.UpdatePageRequest, actor *models.JWTClaims) (*models.Page, error)
	Delete(ctx context.Context, slug string, actor *models.JWTClaims) error
}

// PageHandler manages static page HTTP endpoints.
type PageHandler struct {
	service pageService
}

// NewPageHandler constructs the handler.
func NewPageHandler(svc pageService) *PageHandler {
	return &PageHandler{service: svc}
}

// List godoc
// @Summary List pages
// @Description Unpublished pages are only visible to admins
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages [get]
func (h *PageHandler) List(c *gin.Context) {
	pages, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pages, nil)
}

// Get godoc
// @Summary Get a page by slug
// @Tags Pages
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/{slug} [get]
func (h *PageHandler) Get(c *gin.Context) {
	page, err := h.service.Get(c.Request.Context(), c.Param("slug"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Create godoc
// @Summary Create a page
// @Tags Pages
// @Accept json
// @Produce json
// @Param payload body dto.CreatePageRequest true "Page payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/pages [post]
func (h *PageHandler) Create(c *gin.Context) {
	var req dto.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid page payload"))
		return
	}
	page, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, page, nil)
}

// Update godoc
// @Summary Update a page
// @Tags Pages
// @Accept json
// @Produce json
// @Param slug path string true "Page slug"
// @Param payload body dto.UpdatePageRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/pages/{slug} [patch]
func (h *PageHandler) Update(c *gin.Context) {
	var req dto.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid page payload"))
		return
	}
	page, err := h.service.Update(c.Request.Context(), c.Param("slug"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Delete godoc
// @Summary Delete a page
// @Tags Pages
// @Produce json
// @Param slug path string true "Page slug"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/pages/{slug} [delete]
func (h *PageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("slug"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
