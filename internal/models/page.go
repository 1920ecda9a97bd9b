package models

import "time"

// Page is an admin-managed static content page (about, copyright, and so on).
type Page struct {
	ID              string    `db:"id" json:"id"`
	Slug            string    `db:"slug" json:"slug"`
	Title           string    `db:"title" json:"title"`
	Body            string    `db:"body" json:"body"`
	MetaTitle       *string   `db:"meta_title" json:"meta_title,omitempty"`
	MetaDescription *string   `db:"meta_description" json:"meta_description,omitempty"`
	Published       bool      `db:"published" json:"published"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
