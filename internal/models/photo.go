package models

import (
	"time"

	"github.com/google/uuid"
)

type PhotoStatus string

const (
	PhotoStatusProcessing PhotoStatus = "processing"
	PhotoStatusReady      PhotoStatus = "ready"
	PhotoStatusError      PhotoStatus = "error"
)

// Variant is one resized derivative of the original upload.
type Variant struct {
	Size       int    `json:"size"`
	StorageKey string `json:"storage_key"`
}

// Place is a human-readable location descriptor. Source is "auto" for
// geocoded places and "user" for overrides set through the API.
type Place struct {
	Label   string  `json:"label"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// ExifData is the metadata extracted from the original image. Coordinates
// are only meaningful when HasGPS is true.
type ExifData struct {
	HasGPS bool    `json:"hasGps"`
	Lat    float64 `json:"lat,omitempty"`
	Lon    float64 `json:"lon,omitempty"`
}

// JobOutcome is the terminal result of one job kind for a photo.
// A kind absent from the progress map is still pending.
type JobOutcome string

const (
	JobOutcomeOK        JobOutcome = "ok"
	JobOutcomeTolerated JobOutcome = "tolerated"
	JobOutcomeFailed    JobOutcome = "failed"
)

type Photo struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	StorageKey string    `json:"storage_key" db:"storage_key"`

	Variants  []Variant `json:"variants" db:"variants"`
	CaptionAI *string   `json:"caption_ai,omitempty" db:"caption_ai"`
	NoteUser  *string   `json:"note_user,omitempty" db:"note_user"`
	Exif      ExifData  `json:"exif" db:"exif"`

	PlaceAuto        *Place `json:"place_auto,omitempty" db:"place_auto"`
	LocationOverride *Place `json:"location_override,omitempty" db:"location_override"`
	PlaceDisplay     *Place `json:"place_display,omitempty" db:"place_display"`

	Status PhotoStatus `json:"status" db:"status"`

	// Jobs records the terminal outcome of each job kind so the merger
	// can decide when the photo has converged.
	Jobs map[JobKind]JobOutcome `json:"jobs" db:"jobs"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
