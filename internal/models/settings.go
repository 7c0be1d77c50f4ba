package models

import "time"

// UserSettings holds per-owner display preferences. A row is created lazily
// on the first settings update; DetailOnly and SlideshowIntervalSec default
// to false and 5 until then.
type UserSettings struct {
	UserID               string    `json:"user_id" db:"user_id"`
	DetailOnly           bool      `json:"detail_only" db:"detail_only"`
	SlideshowIntervalSec int       `json:"slideshow_interval_sec" db:"slideshow_interval_sec"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}
