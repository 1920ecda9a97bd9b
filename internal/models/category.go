package models

import "time"

// Category is a named, typed grouping used for browsing.
type Category struct {
	ID              string      `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Type            ContentType `db:"type" json:"type"`
	Slug            string      `db:"slug" json:"slug"`
	ThumbnailURL    *string     `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	About           *string     `db:"about" json:"about,omitempty"`
	MetaTitle       *string     `db:"meta_title" json:"meta_title,omitempty"`
	MetaDescription *string     `db:"meta_description" json:"meta_description,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`

	// Populated by listing queries.
	ItemCount int64 `db:"item_count" json:"item_count"`
}

// CategoryFilter captures filters for listing categories.
type CategoryFilter struct {
	Type   ContentType
	Search string
}
