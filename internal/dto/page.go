package dto

// CreatePageRequest contains the payload for creating a static page.
type CreatePageRequest struct {
	Slug            string  `json:"slug" validate:"required,max=100"`
	Title           string  `json:"title" validate:"required,max=200"`
	Body            string  `json:"body" validate:"required"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	Published       bool    `json:"published"`
}

// UpdatePageRequest contains partial edits. Nil fields are left untouched.
type UpdatePageRequest struct {
	Slug            *string `json:"slug" validate:"omitempty,max=100"`
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Body            *string `json:"body"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	Published       *bool   `json:"published"`
}
