package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/models"
	appErrors "github.com/ringbuz/ringbuz-api/pkg/errors"
)

type sitemapContentLister interface {
	ListForSitemap(ctx context.Context) ([]models.SitemapEntry, error)
}

type sitemapCategoryLister interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
}

type sitemapPageLister interface {
	List(ctx context.Context, publishedOnly bool) ([]models.Page, error)
}

type sitemapSettingsReader interface {
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
}

type sitemapURL struct {
	XMLName xml.Name      `xml:"url"`
	Loc     string        `xml:"loc"`
	LastMod string        `xml:"lastmod,omitempty"`
	Images  []sitemapView `xml:"image:image,omitempty"`
}

type sitemapView struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	Image   string   `xml:"xmlns:image,attr,omitempty"`
	URLs    []sitemapURL
}

// SitemapService renders the crawl artifacts: sitemap.xml, robots.txt and
// ads.txt. Output is cached since crawlers hit these paths constantly.
type SitemapService struct {
	content    sitemapContentLister
	categories sitemapCategoryLister
	pages      sitemapPageLister
	settings   sitemapSettingsReader
	cache      *CacheService
	logger     *zap.Logger
	baseURL    string
	ttl        time.Duration
}

// NewSitemapService constructs the service.
func NewSitemapService(content sitemapContentLister, categories sitemapCategoryLister, pages sitemapPageLister, settings sitemapSettingsReader, cache *CacheService, logger *zap.Logger, baseURL string, ttl time.Duration) *SitemapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SitemapService{
		content:    content,
		categories: categories,
		pages:      pages,
		settings:   settings,
		cache:      cache,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		ttl:        ttl,
	}
}

// Sitemap renders the full XML sitemap covering the landing pages, category
// pages, static pages and every approved sitemap-eligible item.
func (s *SitemapService) Sitemap(ctx context.Context) ([]byte, error) {
	const cacheKey = "seo:sitemap"
	var cached []byte
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	set := urlset{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		Image: "http://www.google.com/schemas/sitemap-image/1.1",
	}
	set.URLs = append(set.URLs,
		sitemapURL{Loc: s.baseURL + "/"},
		sitemapURL{Loc: s.baseURL + "/wallpapers"},
		sitemapURL{Loc: s.baseURL + "/ringtones"},
	)

	categories, err := s.categories.List(ctx, models.CategoryFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	for _, category := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc: fmt.Sprintf("%s/%s/category/%s", s.baseURL, category.Type, category.Slug),
		})
	}

	pages, err := s.pages.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}
	for _, page := range pages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/pages/%s", s.baseURL, page.Slug),
			LastMod: page.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}

	entries, err := s.content.ListForSitemap(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sitemap content")
	}
	for _, entry := range entries {
		slug := entry.ID
		if entry.Slug != nil && *entry.Slug != "" {
			slug = *entry.Slug
		}
		u := sitemapURL{
			Loc:     fmt.Sprintf("%s/%s/%s", s.baseURL, entry.Type, slug),
			LastMod: entry.UpdatedAt.UTC().Format("2006-01-02"),
		}
		if entry.Type == models.ContentTypeWallpapers && entry.URL != "" {
			u.Images = []sitemapView{{Loc: entry.URL, Title: entry.Title}}
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render sitemap")
	}
	out := append([]byte(xml.Header), body...)

	if err := s.cache.Set(ctx, cacheKey, out, s.ttl); err != nil {
		s.logger.Warn("failed to cache sitemap", zap.Error(err))
	}
	return out, nil
}

// Robots renders robots.txt: a permissive default, the sitemap pointer and
// any admin-configured extra rules.
func (s *SitemapService) Robots(ctx context.Context) ([]byte, error) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /admin/\n")

	if extra := s.settingString(ctx, models.SettingRobotsExtra); extra != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(extra))
		b.WriteString("\n")
	}

	b.WriteString("\nSitemap: " + s.baseURL + "/sitemap.xml\n")
	return []byte(b.String()), nil
}

// AdsTxt renders the admin-configured ads.txt body. Missing configuration
// yields an empty file rather than an error.
func (s *SitemapService) AdsTxt(ctx context.Context) ([]byte, error) {
	return []byte(s.settingString(ctx, models.SettingAdsTxt)), nil
}

func (s *SitemapService) settingString(ctx context.Context, key string) string {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load setting", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	var value string
	if err := json.Unmarshal(setting.Value, &value); err != nil {
		s.logger.Warn("setting is not a string", zap.String("key", key), zap.Error(err))
		return ""
	}
	return value
}
