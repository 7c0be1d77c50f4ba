package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/your-org/photodisplay/internal/models"
	"github.com/your-org/photodisplay/internal/observability"
)

// Dispatcher turns accepted uploads into job sets and routes completed job
// results through the merger, scheduling the dependent geocode job when the
// exif result carries a coordinate.
type Dispatcher struct {
	store  PhotoStore
	jobs   JobPublisher
	merger *Merger
}

func NewDispatcher(store PhotoStore, jobs JobPublisher, merger *Merger) *Dispatcher {
	return &Dispatcher{store: store, jobs: jobs, merger: merger}
}

// SubmitUpload creates the photo record in processing state and emits the
// derivative, exif and caption jobs, in that order. The storage key is
// assumed already validated by the intake layer.
func (d *Dispatcher) SubmitUpload(ctx context.Context, ownerID, storageKey string) (*models.Photo, error) {
	photo, err := d.store.CreatePhoto(ctx, ownerID, storageKey)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}

	if err := d.emitUploadJobs(ctx, photo.ID); err != nil {
		return nil, err
	}

	observability.PhotosSubmitted.Inc()
	slog.Info("photo submitted", "photo", photo.ID, "owner", ownerID)
	return photo, nil
}

// HandleResult merges one job result. A successful exif result with GPS
// additionally emits the geocode job carrying the decoded coordinate;
// geocode is never scheduled before exif completes.
func (d *Dispatcher) HandleResult(ctx context.Context, res models.JobResult) error {
	photo, err := d.merger.Apply(ctx, res)
	if err != nil {
		return err
	}
	if photo == nil {
		return nil
	}

	// The terminal check keeps a redelivered exif result from emitting a
	// second geocode job once the first one already completed.
	if res.Kind == models.JobKindExif && res.Success && res.Exif != nil && res.Exif.HasGPS &&
		!terminal(photo.Jobs[models.JobKindGeocode]) {
		job := models.Job{
			Kind:    models.JobKindGeocode,
			PhotoID: res.PhotoID,
			Geocode: &models.GeocodePayload{Lat: res.Exif.Lat, Lon: res.Exif.Lon},
		}
		if err := d.jobs.PublishJob(ctx, job); err != nil {
			return fmt.Errorf("emit geocode job: %w", err)
		}
	}
	return nil
}

// Retry resets an errored photo to processing and re-emits the full job set.
// This is the only error -> processing transition and is always externally
// triggered.
func (d *Dispatcher) Retry(ctx context.Context, photoID uuid.UUID) (*models.Photo, error) {
	photo, err := d.store.UpdatePhoto(ctx, photoID, func(p *models.Photo) error {
		if p.Status != models.PhotoStatusError {
			return fmt.Errorf("photo %s is %s, only errored photos can be retried", p.ID, p.Status)
		}
		p.Status = models.PhotoStatusProcessing
		p.Jobs = map[models.JobKind]models.JobOutcome{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, nil
	}

	if err := d.emitUploadJobs(ctx, photo.ID); err != nil {
		return nil, err
	}

	slog.Info("photo retry dispatched", "photo", photo.ID)
	return photo, nil
}

func (d *Dispatcher) emitUploadJobs(ctx context.Context, photoID uuid.UUID) error {
	for _, kind := range models.UploadJobKinds {
		if err := d.jobs.PublishJob(ctx, models.Job{Kind: kind, PhotoID: photoID}); err != nil {
			return fmt.Errorf("emit %s job: %w", kind, err)
		}
	}
	return nil
}
