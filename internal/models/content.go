package models

import (
	"time"

	"github.com/lib/pq"
)

// ContentType distinguishes the two catalog families. It is fixed at creation.
type ContentType string

const (
	ContentTypeWallpapers ContentType = "wallpapers"
	ContentTypeRingtones  ContentType = "ringtones"
)

// Valid reports whether the value is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentTypeWallpapers || t == ContentTypeRingtones
}

// MaxTagsPerItem bounds the free-form tag set on a content item.
const MaxTagsPerItem = 5

// ContentItem represents one downloadable asset in the catalog.
type ContentItem struct {
	ID              string         `db:"id" json:"id"`
	Slug            *string        `db:"slug" json:"slug,omitempty"`
	Type            ContentType    `db:"type" json:"type"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Tags            pq.StringArray `db:"tags" json:"tags"`
	CategoryID      string         `db:"category_id" json:"category_id"`
	StorageKey      *string        `db:"storage_key" json:"-"`
	URL             string         `db:"url" json:"url"`
	FileSize        int64          `db:"file_size" json:"file_size"`
	Dimensions      *string        `db:"dimensions" json:"dimensions,omitempty"`
	DurationSeconds *float64       `db:"duration_seconds" json:"duration_seconds,omitempty"`
	CopyrightInfo   *string        `db:"copyright_info" json:"copyright_info,omitempty"`
	UserID          string         `db:"user_id" json:"user_id"`
	IsApproved      bool           `db:"is_approved" json:"is_approved"`
	Downloads       int64          `db:"downloads" json:"downloads"`

	MetaTitle        *string `db:"meta_title" json:"meta_title,omitempty"`
	MetaDescription  *string `db:"meta_description" json:"meta_description,omitempty"`
	MetaKeywords     *string `db:"meta_keywords" json:"meta_keywords,omitempty"`
	MetaImage        *string `db:"meta_image" json:"meta_image,omitempty"`
	NoIndex          bool    `db:"no_index" json:"no_index"`
	IncludeInSitemap bool    `db:"include_in_sitemap" json:"include_in_sitemap"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined columns, populated by list/detail queries.
	CategoryName string `db:"category_name" json:"category_name,omitempty"`
	CategorySlug string `db:"category_slug" json:"category_slug,omitempty"`
	LikeCount    int64  `db:"like_count" json:"like_count"`
}

// PublicSlug returns the URL segment routing to this item, falling back to the
// opaque id when no slug is set.
func (c *ContentItem) PublicSlug() string {
	if c.Slug != nil && *c.Slug != "" {
		return *c.Slug
	}
	return c.ID
}

// ContentFilter captures filtering criteria for catalog listings.
type ContentFilter struct {
	Type         ContentType
	CategoryID   string
	CategorySlug string
	Tag          string
	Search       string
	ApprovedOnly bool
	UserID       string
	LikedBy      string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// DownloadReceipt is returned by the download accounting operation.
type DownloadReceipt struct {
	URL       string `db:"url" json:"url"`
	Downloads int64  `db:"downloads" json:"downloads"`
}

// SitemapEntry is the projection used when assembling the XML sitemap.
type SitemapEntry struct {
	Slug      *string     `db:"slug"`
	ID        string      `db:"id"`
	Type      ContentType `db:"type"`
	Title     string      `db:"title"`
	URL       string      `db:"url"`
	UpdatedAt time.Time   `db:"updated_at"`
}
