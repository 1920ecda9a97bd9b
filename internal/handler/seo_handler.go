package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringbuz/ringbuz-api/pkg/response"
)

type sitemapService interface {
	Sitemap(ctx context.Context) ([]byte, error)
	Robots(ctx context.Context) ([]byte, error)
	AdsTxt(ctx context.Context) ([]byte, error)
}

// SEOHandler serves crawler-facing artifacts.
type SEOHandler struct {
	service sitemapService
}

// NewSEOHandler constructs the handler.
func NewSEOHandler(svc sitemapService) *SEOHandler {
	return &SEOHandler{service: svc}
}

// Sitemap godoc
// @Summary XML sitemap
// @Tags SEO
// @Produce xml
// @Success 200 {string} string
// @Router /sitemap.xml [get]
func (h *SEOHandler) Sitemap(c *gin.Context) {
	body, err := h.service.Sitemap(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Robots godoc
// @Summary robots.txt
// @Tags SEO
// @Produce plain
// @Success 200 {string} string
// @Router /robots.txt [get]
func (h *SEOHandler) Robots(c *gin.Context) {
	body, err := h.service.Robots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

// AdsTxt godoc
// @Summary ads.txt
// @Tags SEO
// @Produce plain
// @Success 200 {string} string
// @Router /ads.txt [get]
func (h *SEOHandler) AdsTxt(c *gin.Context) {
	body, err := h.service.AdsTxt(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}
