package models

import "time"

// Like marks a profile's appreciation of a content item. The pair is unique;
// repeated likes are no-ops.
type Like struct {
	ContentID string    `db:"content_id" json:"content_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
