package dto

import "github.com/ringbuz/ringbuz-api/internal/models"

// CreateCategoryRequest contains the payload for creating a browse category.
type CreateCategoryRequest struct {
	Name            string             `json:"name" validate:"required,max=100"`
	Type            models.ContentType `json:"type" validate:"required"`
	ThumbnailURL    *string            `json:"thumbnail_url" validate:"omitempty,url"`
	About           *string            `json:"about" validate:"omitempty,max=5000"`
	MetaTitle       *string            `json:"meta_title"`
	MetaDescription *string            `json:"meta_description"`
}

// UpdateCategoryRequest contains partial edits. Nil fields are left untouched.
type UpdateCategoryRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=100"`
	ThumbnailURL    *string `json:"thumbnail_url" validate:"omitempty,url"`
	About           *string `json:"about" validate:"omitempty,max=5000"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}
