package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sitemapServiceMock struct {
	sitemap []byte
	robots  []byte
	adsTxt  []byte
}

func (m *sitemapServiceMock) Sitemap(ctx context.Context) ([]byte, error) { return m.sitemap, nil }
func (m *sitemapServiceMock) Robots(ctx context.Context) ([]byte, error)  { return m.robots, nil }
func (m *sitemapServiceMock) AdsTxt(ctx context.Context) ([]byte, error)  { return m.adsTxt, nil }

func TestSEOHandlerSitemapContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSEOHandler(&sitemapServiceMock{sitemap: []byte(`<?xml version="1.0"?><urlset></urlset>`)})

	c, w := newGinContext(http.MethodGet, "/sitemap.xml", nil)
	handler.Sitemap(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "urlset")
}

func TestSEOHandlerRobotsPlainText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSEOHandler(&sitemapServiceMock{robots: []byte("User-agent: *\nDisallow: /api/\n")})

	c, w := newGinContext(http.MethodGet, "/robots.txt", nil)
	handler.Robots(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Disallow: /api/")
}

func TestSEOHandlerAdsTxtEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSEOHandler(&sitemapServiceMock{})

	c, w := newGinContext(http.MethodGet, "/ads.txt", nil)
	handler.AdsTxt(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
