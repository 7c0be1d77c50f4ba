package dto

type UpdateSettingsRequest struct {
	DetailOnly           *bool `json:"detail_only"`
	SlideshowIntervalSec *int  `json:"slideshow_interval_sec" binding:"omitempty,min=1"`
}

type SettingsResponse struct {
	UserID               string `json:"user_id"`
	DetailOnly           bool   `json:"detail_only"`
	SlideshowIntervalSec int    `json:"slideshow_interval_sec"`
	UpdatedAt            string `json:"updated_at"`
}
