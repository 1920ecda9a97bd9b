package models

import (
	"encoding/json"
	"time"
)

// Well-known site settings keys.
const (
	SettingSEODefaults = "seo_defaults"
	SettingRobotsExtra = "robots_extra"
	SettingAdsTxt      = "ads_txt"
)

// SiteSetting is an admin-writable configuration record. Values are free-form
// JSON; the key determines the expected shape.
type SiteSetting struct {
	Key       string          `db:"key" json:"key"`
	Value     json.RawMessage `db:"value" json:"value"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// SEODefaults is the payload stored under SettingSEODefaults.
type SEODefaults struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Image       string `json:"image"`
}
