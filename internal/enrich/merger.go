package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/your-org/photodisplay/internal/models"
	"github.com/your-org/photodisplay/internal/observability"
)

// Merger applies job results to photo records. It is the only place photo
// state transitions happen, and it is total: every kind/outcome combination
// maps to a transition. Per-photo serialization comes from the store's
// atomic UpdatePhoto.
type Merger struct {
	store PhotoStore
}

func NewMerger(store PhotoStore) *Merger {
	return &Merger{store: store}
}

// Apply merges one result into the photo record. Results for photos that no
// longer exist are discarded as no-ops and return (nil, nil).
func (m *Merger) Apply(ctx context.Context, res models.JobResult) (*models.Photo, error) {
	photo, err := m.store.UpdatePhoto(ctx, res.PhotoID, func(p *models.Photo) error {
		m.merge(p, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("merge %s result: %w", res.Kind, err)
	}
	if photo == nil {
		slog.Debug("discarding result for deleted photo", "photo", res.PhotoID, "kind", res.Kind)
		return nil, nil
	}

	if photo.Status != models.PhotoStatusProcessing {
		observability.PhotosConverged.WithLabelValues(string(photo.Status)).Inc()
	}
	return photo, nil
}

func (m *Merger) merge(p *models.Photo, res models.JobResult) {
	switch res.Kind {
	case models.JobKindDerivative:
		if res.Success {
			// Replace, not append: re-applying the same result is idempotent.
			p.Variants = res.Variants
			p.Jobs[models.JobKindDerivative] = models.JobOutcomeOK
		} else {
			p.Jobs[models.JobKindDerivative] = models.JobOutcomeFailed
		}

	case models.JobKindExif:
		if res.Success && res.Exif != nil {
			p.Exif = *res.Exif
			p.Jobs[models.JobKindExif] = models.JobOutcomeOK
		} else {
			// Tolerated: the hasGps=false placeholder stands.
			p.Jobs[models.JobKindExif] = models.JobOutcomeTolerated
		}

	case models.JobKindGeocode:
		if res.Success && res.Place != nil {
			if p.PlaceAuto == nil {
				p.PlaceAuto = res.Place
			}
			p.Jobs[models.JobKindGeocode] = models.JobOutcomeOK
		} else {
			// "No place found" and failure are treated alike: no field change.
			p.Jobs[models.JobKindGeocode] = models.JobOutcomeTolerated
		}

	case models.JobKindCaption:
		if res.Success && res.Caption != nil {
			if p.CaptionAI == nil {
				caption := TruncateCaption(*res.Caption)
				p.CaptionAI = &caption
			}
			p.Jobs[models.JobKindCaption] = models.JobOutcomeOK
		} else {
			p.Jobs[models.JobKindCaption] = models.JobOutcomeTolerated
		}
	}

	p.PlaceDisplay = DisplayPlace(p)
	m.updateStatus(p)
}

// updateStatus recomputes the photo status from job progress. Status is
// monotonic here: error and ready are terminal, only the external retry
// trigger moves a photo back to processing.
func (m *Merger) updateStatus(p *models.Photo) {
	if p.Status != models.PhotoStatusProcessing {
		return
	}

	if p.Jobs[models.JobKindDerivative] == models.JobOutcomeFailed {
		p.Status = models.PhotoStatusError
		return
	}

	if p.Jobs[models.JobKindDerivative] != models.JobOutcomeOK {
		return
	}
	if !terminal(p.Jobs[models.JobKindExif]) || !terminal(p.Jobs[models.JobKindCaption]) {
		return
	}
	if geocodePending(p) {
		return
	}
	p.Status = models.PhotoStatusReady
}

// geocodePending reports whether the photo is still waiting on a geocode
// outcome. Geocode is only ever scheduled when exif succeeded with GPS.
func geocodePending(p *models.Photo) bool {
	if p.Jobs[models.JobKindExif] != models.JobOutcomeOK || !p.Exif.HasGPS {
		return false
	}
	return !terminal(p.Jobs[models.JobKindGeocode])
}

func terminal(o models.JobOutcome) bool {
	return o == models.JobOutcomeOK || o == models.JobOutcomeTolerated || o == models.JobOutcomeFailed
}

// DisplayPlace derives the place shown to the user: the override when
// present, otherwise the geocoded place, otherwise nothing.
func DisplayPlace(p *models.Photo) *models.Place {
	if p.LocationOverride != nil {
		return p.LocationOverride
	}
	return p.PlaceAuto
}
