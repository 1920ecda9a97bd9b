package dto

import "github.com/ringbuz/ringbuz-api/internal/models"

// CreateContentRequest contains metadata submitted alongside a file upload or
// an external URL.
type CreateContentRequest struct {
	Type            models.ContentType `form:"type" json:"type" validate:"required"`
	Title           string             `form:"title" json:"title" validate:"required,max=200"`
	Description     string             `form:"description" json:"description" validate:"required,max=5000"`
	Tags            []string           `form:"tags" json:"tags" validate:"max=5,dive,max=50"`
	CategoryID      string             `form:"category_id" json:"category_id" validate:"required"`
	URL             string             `form:"url" json:"url" validate:"omitempty,url"`
	CopyrightInfo   *string            `form:"copyright_info" json:"copyright_info"`
	MetaTitle       *string            `form:"meta_title" json:"meta_title"`
	MetaDescription *string            `form:"meta_description" json:"meta_description"`
	MetaKeywords    *string            `form:"meta_keywords" json:"meta_keywords"`
	MetaImage       *string            `form:"meta_image" json:"meta_image"`
}

// UpdateContentRequest contains partial edits to an existing item. Nil fields
// are left untouched.
type UpdateContentRequest struct {
	Title            *string   `json:"title" validate:"omitempty,max=200"`
	Description      *string   `json:"description" validate:"omitempty,max=5000"`
	Tags             *[]string `json:"tags" validate:"omitempty,max=5,dive,max=50"`
	CategoryID       *string   `json:"category_id"`
	CopyrightInfo    *string   `json:"copyright_info"`
	IsApproved       *bool     `json:"is_approved"`
	MetaTitle        *string   `json:"meta_title"`
	MetaDescription  *string   `json:"meta_description"`
	MetaKeywords     *string   `json:"meta_keywords"`
	MetaImage        *string   `json:"meta_image"`
	NoIndex          *bool     `json:"no_index"`
	IncludeInSitemap *bool     `json:"include_in_sitemap"`
}

// ContentListQuery captures catalog listing query parameters.
type ContentListQuery struct {
	Type      models.ContentType `form:"type"`
	Category  string             `form:"category"`
	Tag       string             `form:"tag"`
	Search    string             `form:"search"`
	Mine      bool               `form:"mine"`
	Liked     bool               `form:"liked"`
	Pending   bool               `form:"pending"`
	Page      int                `form:"page"`
	PageSize  int                `form:"page_size"`
	SortBy    string             `form:"sort_by"`
	SortOrder string             `form:"sort_order"`
}
