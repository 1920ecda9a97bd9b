package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/service"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type likeService interface {
	Like(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*service.LikeStatus, error)
	Unlike(ctx context.Context, slugOrID string, actor *models.JWTClaims) (*service.LikeStatus, error)
}

// LikeHandler manages like/unlike endpoints.
type LikeHandler struct {
	service likeService
}

// NewLikeHandler constructs the handler.
func NewLikeHandler(svc likeService) *LikeHandler {
	return &LikeHandler{service: svc}
}

// Like godoc
// @Summary Like a content item
// @Tags Likes
// @Produce json
// @Param slug path string true "Slug or ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /content/{slug}/like [post]
func (h *LikeHandler) Like(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.service.Like(c.Request.Context(), c.Param("slug"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Unlike godoc
// @Summary Remove a like from a content item
// @Tags Likes
// @Produce json
// @Param slug path string true "Slug or ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /content/{slug}/like [delete]
func (h *LikeHandler) Unlike(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.service.Unlike(c.Request.Context(), c.Param("slug"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
