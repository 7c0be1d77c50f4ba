package models

import (
	"github.com/google/uuid"
)

type JobKind string

const (
	JobKindDerivative JobKind = "derivative"
	JobKindExif       JobKind = "exif"
	JobKindCaption    JobKind = "caption"
	JobKindGeocode    JobKind = "geocode"
)

// UploadJobKinds are the kinds emitted for every accepted upload, in
// emission order. Geocode is emitted separately once exif reports GPS.
var UploadJobKinds = []JobKind{JobKindDerivative, JobKindExif, JobKindCaption}

// GeocodePayload carries the decoded coordinate from the exif job into
// the geocode job.
type GeocodePayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Job is an immutable unit of enrichment work published to NATS.
type Job struct {
	Kind    JobKind         `json:"kind"`
	PhotoID uuid.UUID       `json:"photo_id"`
	Geocode *GeocodePayload `json:"geocode,omitempty"`
}

// JobResult is the single terminal outcome of one job. Exactly one of the
// data fields matching Kind is set on success; Error carries a short
// description on failure.
type JobResult struct {
	PhotoID uuid.UUID `json:"photo_id"`
	Kind    JobKind   `json:"kind"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`

	Variants []Variant `json:"variants,omitempty"`
	Exif     *ExifData `json:"exif,omitempty"`
	Place    *Place    `json:"place,omitempty"`
	Caption  *string   `json:"caption,omitempty"`
}
