package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type settingsService interface {
	List(ctx context.Context, actor *models.JWTClaims) ([]models.SiteSetting, error)
	Get(ctx context.Context, key string, actor *models.JWTClaims) (*models.SiteSetting, error)
	Update(ctx context.Context, key string, value json.RawMessage, actor *models.JWTClaims) (*models.SiteSetting, error)
	SEODefaults(ctx context.Context) models.SEODefaults
}

// SettingsHandler manages site settings HTTP endpoints.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// SEODefaults godoc
// @Summary Default SEO metadata
// @Description Public read of the site-wide SEO defaults
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seo/defaults [get]
func (h *SettingsHandler) SEODefaults(c *gin.Context) {
	defaults := h.service.SEODefaults(c.Request.Context())
	response.JSON(c, http.StatusOK, defaults, nil)
}

// List godoc
// @Summary List site settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Get godoc
// @Summary Get a setting by key
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	setting, err := h.service.Get(c.Request.Context(), c.Param("key"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

// Update godoc
// @Summary Update a setting
// @Description Only known keys are accepted; values must be valid JSON
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param payload body object true "Setting value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/settings/{key} [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var value json.RawMessage
	if err := c.ShouldBindJSON(&value); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "setting value must be valid JSON"))
		return
	}
	setting, err := h.service.Update(c.Request.Context(), c.Param("key"), value, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}
