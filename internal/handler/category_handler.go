package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/internal/dto"
	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type categoryService interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	Get(ctx context.Context, contentType models.ContentType, slug string) (*models.Category, error)
	Create(ctx context.Context, req dto.CreateCategoryRequest, actor *models.JWTClaims) (*models.Category, error)
	Update(ctx context.Context, id string, req dto.UpdateCategoryRequest, actor *models.JWTClaims) (*models.Category, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// CategoryHandler manages category HTTP endpoints.
type CategoryHandler struct {
	service categoryService
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(svc categoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Param type query string false "Content type filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	filter := models.CategoryFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if contentType := c.Query("type"); contentType != "" {
		filter.Type = models.ContentType(strings.ToLower(contentType))
	}
	categories, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Get godoc
// @Summary Get a category by type and slug
// @Tags Categories
// @Produce json
// @Param type path string true "Content type"
// @Param slug path string true "Category slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /categories/{type}/{slug} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	contentType := models.ContentType(strings.ToLower(c.Param("type")))
	if !contentType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown content type"))
		return
	}
	category, err := h.service.Get(c.Request.Context(), contentType, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Create godoc
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body dto.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid category payload"))
		return
	}
	category, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, category, nil)
}

// Update godoc
// @Summary Update a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body dto.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/categories/{id} [patch]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid category payload"))
		return
	}
	category, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete a category
// @Description Refused while content items still reference the category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
