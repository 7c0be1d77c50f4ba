package dto

import (
	"github.com/google/uuid"

	"github.com/your-org/photodisplay/internal/models"
)

type UploadItem struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

type UploadRequest struct {
	OwnerID string       `json:"owner_id" binding:"required"`
	Items   []UploadItem `json:"items" binding:"required,min=1,dive"`
}

type UploadResponse struct {
	PhotoIDs []uuid.UUID `json:"photo_ids"`
}

type UpdateLocationRequest struct {
	Label   string  `json:"label" binding:"required"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type UpdateNoteRequest struct {
	Note string `json:"note"`
}

type PhotoResponse struct {
	ID               uuid.UUID        `json:"id"`
	OwnerID          string           `json:"owner_id"`
	StorageKey       string           `json:"storage_key"`
	Variants         []models.Variant `json:"variants"`
	CaptionAI        *string          `json:"caption_ai,omitempty"`
	NoteUser         *string          `json:"note_user,omitempty"`
	Exif             models.ExifData  `json:"exif"`
	PlaceAuto        *models.Place    `json:"place_auto,omitempty"`
	LocationOverride *models.Place    `json:"location_override,omitempty"`
	PlaceDisplay     *models.Place    `json:"place_display,omitempty"`
	Status           string           `json:"status"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
	Total  int             `json:"total"`
}
