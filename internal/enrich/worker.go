package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/your-org/photodisplay/internal/models"
	"github.com/your-org/photodisplay/internal/observability"
)

// Worker executes enrichment jobs. It is stateless per job: every invocation
// reads what it needs, runs one component and emits exactly one JobResult.
// Only storage/persistence failures surface as errors, so the transport can
// redeliver; everything else becomes a typed result for the merger.
type Worker struct {
	store     PhotoStore
	blobs     BlobStore
	generator *DerivativeGenerator
	geocoder  Geocoder
	captioner Captioner
	language  string
}

func NewWorker(store PhotoStore, blobs BlobStore, generator *DerivativeGenerator, geocoder Geocoder, captioner Captioner, language string) *Worker {
	return &Worker{
		store:     store,
		blobs:     blobs,
		generator: generator,
		geocoder:  geocoder,
		captioner: captioner,
		language:  language,
	}
}

// Process runs one job to its terminal outcome.
func (w *Worker) Process(ctx context.Context, job models.Job) (models.JobResult, error) {
	start := time.Now()

	res, err := w.process(ctx, job)
	if err != nil {
		return models.JobResult{}, err
	}

	outcome := "failure"
	if res.Success {
		outcome = "success"
	}
	observability.JobsProcessed.WithLabelValues(string(job.Kind), outcome).Inc()
	observability.JobDuration.WithLabelValues(string(job.Kind)).Observe(time.Since(start).Seconds())

	return res, nil
}

func (w *Worker) process(ctx context.Context, job models.Job) (models.JobResult, error) {
	res := models.JobResult{PhotoID: job.PhotoID, Kind: job.Kind}

	photo, err := w.store.GetPhoto(ctx, job.PhotoID)
	if err != nil {
		return models.JobResult{}, fmt.Errorf("load photo %s: %w", job.PhotoID, err)
	}
	if photo == nil {
		// Deleted while the job was queued; the merger discards this anyway.
		res.Error = "photo not found"
		return res, nil
	}

	switch job.Kind {
	case models.JobKindDerivative:
		return w.runDerivative(ctx, photo, res)
	case models.JobKindExif:
		return w.runExif(ctx, photo, res)
	case models.JobKindGeocode:
		return w.runGeocode(ctx, job, res)
	case models.JobKindCaption:
		return w.runCaption(ctx, photo, res)
	default:
		res.Error = fmt.Sprintf("unknown job kind %q", job.Kind)
		return res, nil
	}
}

func (w *Worker) runDerivative(ctx context.Context, photo *models.Photo, res models.JobResult) (models.JobResult, error) {
	data, err := w.blobs.FetchOriginal(ctx, photo.StorageKey)
	if err != nil {
		return models.JobResult{}, fmt.Errorf("fetch original %s: %w", photo.StorageKey, err)
	}

	variants, err := w.generator.Generate(data)
	if err != nil {
		slog.Warn("derivative generation failed", "photo", photo.ID, "error", err)
		res.Error = err.Error()
		return res, nil
	}

	refs := make([]models.Variant, 0, len(variants))
	for _, v := range variants {
		key, err := w.blobs.PutVariant(ctx, photo.ID, v.Size, v.Data)
		if err != nil {
			return models.JobResult{}, fmt.Errorf("store %d variant: %w", v.Size, err)
		}
		refs = append(refs, models.Variant{Size: v.Size, StorageKey: key})
	}

	res.Success = true
	res.Variants = refs
	return res, nil
}

func (w *Worker) runExif(ctx context.Context, photo *models.Photo, res models.JobResult) (models.JobResult, error) {
	data, err := w.blobs.FetchOriginal(ctx, photo.StorageKey)
	if err != nil {
		return models.JobResult{}, fmt.Errorf("fetch original %s: %w", photo.StorageKey, err)
	}

	gps := ExtractGPS(data)
	res.Success = true
	res.Exif = &models.ExifData{HasGPS: gps.HasGPS, Lat: gps.Lat, Lon: gps.Lon}
	return res, nil
}

func (w *Worker) runGeocode(ctx context.Context, job models.Job, res models.JobResult) (models.JobResult, error) {
	if job.Geocode == nil {
		res.Error = "geocode job without coordinate payload"
		return res, nil
	}

	place, err := w.geocoder.Resolve(ctx, job.Geocode.Lat, job.Geocode.Lon)
	if err != nil {
		slog.Warn("geocode failed", "photo", job.PhotoID, "error", err)
		res.Error = err.Error()
		return res, nil
	}

	// place may be nil: "no place found" is a successful terminal outcome.
	res.Success = true
	res.Place = place
	return res, nil
}

func (w *Worker) runCaption(ctx context.Context, photo *models.Photo, res models.JobResult) (models.JobResult, error) {
	data, err := w.blobs.FetchOriginal(ctx, photo.StorageKey)
	if err != nil {
		return models.JobResult{}, fmt.Errorf("fetch original %s: %w", photo.StorageKey, err)
	}

	caption, err := w.captioner.Caption(ctx, data, w.language)
	if err != nil {
		slog.Warn("caption failed", "photo", photo.ID, "error", err)
		res.Error = err.Error()
		return res, nil
	}

	res.Success = true
	res.Caption = &caption
	return res, nil
}
