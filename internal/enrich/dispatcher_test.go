package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/your-org/photodisplay/internal/models"
)

func newTestDispatcher(store *memStore) (*Dispatcher, *MockPublisher) {
	publisher := &MockPublisher{}
	publisher.On("PublishJob", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishResult", mock.Anything, mock.Anything).Return(nil)
	return NewDispatcher(store, publisher, NewMerger(store)), publisher
}

func TestDispatcher_SubmitUploadEmitsJobSet(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/beach.jpg")
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, models.PhotoStatusProcessing, photo.Status)
	assert.Empty(t, photo.Variants)
	assert.False(t, photo.Exif.HasGPS)

	jobs := publishedJobs(publisher)
	require.Len(t, jobs, 3)
	assert.Equal(t, models.JobKindDerivative, jobs[0].Kind)
	assert.Equal(t, models.JobKindExif, jobs[1].Kind)
	assert.Equal(t, models.JobKindCaption, jobs[2].Kind)
	for _, job := range jobs {
		assert.Equal(t, photo.ID, job.PhotoID)
		assert.Nil(t, job.Geocode)
	}
}

func TestDispatcher_ExifWithGPSEmitsGeocode(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/beach.jpg")
	require.NoError(t, err)

	err = dispatcher.HandleResult(ctx, exifResult(photo.ID, true, 40.4461, -79.9822))
	require.NoError(t, err)

	jobs := publishedJobs(publisher)
	require.Len(t, jobs, 4)
	geocode := jobs[3]
	assert.Equal(t, models.JobKindGeocode, geocode.Kind)
	assert.Equal(t, photo.ID, geocode.PhotoID)
	require.NotNil(t, geocode.Geocode)
	assert.InDelta(t, 40.4461, geocode.Geocode.Lat, 1e-9)
	assert.InDelta(t, -79.9822, geocode.Geocode.Lon, 1e-9)
}

func TestDispatcher_RedeliveredExifEmitsGeocodeOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/beach.jpg")
	require.NoError(t, err)

	exif := exifResult(photo.ID, true, 40.4461, -79.9822)
	require.NoError(t, dispatcher.HandleResult(ctx, exif))
	require.NoError(t, dispatcher.HandleResult(ctx, geocodeResult(photo.ID, &models.Place{Label: "Pittsburgh", Source: "auto"})))

	// At-least-once delivery: the same exif result comes around again after
	// the geocode job already completed.
	require.NoError(t, dispatcher.HandleResult(ctx, exif))

	var geocodes int
	for _, job := range publishedJobs(publisher) {
		if job.Kind == models.JobKindGeocode {
			geocodes++
		}
	}
	assert.Equal(t, 1, geocodes)
}

func TestDispatcher_ExifWithoutGPSEmitsNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/indoor.jpg")
	require.NoError(t, err)

	require.NoError(t, dispatcher.HandleResult(ctx, exifResult(photo.ID, false, 0, 0)))
	require.NoError(t, dispatcher.HandleResult(ctx, failure(photo.ID, models.JobKindExif)))

	assert.Len(t, publishedJobs(publisher), 3)
}

func TestDispatcher_ResultForDeletedPhoto(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/gone.jpg")
	require.NoError(t, err)
	require.NoError(t, store.DeletePhoto(ctx, photo.ID))

	// Even a GPS-bearing exif result must not schedule follow-up work.
	require.NoError(t, dispatcher.HandleResult(ctx, exifResult(photo.ID, true, 1, 2)))
	assert.Len(t, publishedJobs(publisher), 3)
}

func TestDispatcher_Retry(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/corrupt.jpg")
	require.NoError(t, err)

	require.NoError(t, dispatcher.HandleResult(ctx, failure(photo.ID, models.JobKindDerivative)))
	stored, err := store.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhotoStatusError, stored.Status)

	retried, err := dispatcher.Retry(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusProcessing, retried.Status)
	assert.Empty(t, retried.Jobs)

	jobs := publishedJobs(publisher)
	require.Len(t, jobs, 6)
	assert.Equal(t, models.JobKindDerivative, jobs[3].Kind)
	assert.Equal(t, models.JobKindExif, jobs[4].Kind)
	assert.Equal(t, models.JobKindCaption, jobs[5].Kind)
}

func TestDispatcher_RetryRejectsNonErrored(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, _ := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/fine.jpg")
	require.NoError(t, err)

	_, err = dispatcher.Retry(ctx, photo.ID)
	assert.Error(t, err)
}

// TestPipeline_EndToEnd drives the full result flow the way the services do:
// worker results are handed back through the dispatcher until the photo
// converges.
func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, publisher := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/trip.jpg")
	require.NoError(t, err)

	require.NoError(t, dispatcher.HandleResult(ctx, derivativeResult(photo.ID)))
	require.NoError(t, dispatcher.HandleResult(ctx, exifResult(photo.ID, true, 48.8584, 2.2945)))
	require.NoError(t, dispatcher.HandleResult(ctx, failure(photo.ID, models.JobKindCaption)))

	stored, err := store.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusProcessing, stored.Status)

	// The geocode job was emitted with the decoded coordinate; resolve it.
	jobs := publishedJobs(publisher)
	require.Len(t, jobs, 4)
	require.NotNil(t, jobs[3].Geocode)

	require.NoError(t, dispatcher.HandleResult(ctx,
		geocodeResult(photo.ID, &models.Place{Label: "Paris, France", Country: "France", Source: "auto"})))

	stored, err = store.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusReady, stored.Status)
	assert.Len(t, stored.Variants, 3)
	assert.Nil(t, stored.CaptionAI)
	require.NotNil(t, stored.PlaceDisplay)
	assert.Equal(t, "Paris, France", stored.PlaceDisplay.Label)
}

func TestPipeline_EndToEndCorruptImage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, _ := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/corrupt.jpg")
	require.NoError(t, err)

	require.NoError(t, dispatcher.HandleResult(ctx, exifResult(photo.ID, false, 0, 0)))
	require.NoError(t, dispatcher.HandleResult(ctx, captionResult(photo.ID, "somehow captioned")))
	require.NoError(t, dispatcher.HandleResult(ctx, failure(photo.ID, models.JobKindDerivative)))

	stored, err := store.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusError, stored.Status)
}

func TestDispatcher_Concurrency(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	dispatcher, _ := newTestDispatcher(store)

	photo, err := dispatcher.SubmitUpload(ctx, "owner-1", "owner-1/burst.jpg")
	require.NoError(t, err)

	results := []models.JobResult{
		derivativeResult(photo.ID),
		exifResult(photo.ID, false, 0, 0),
		captionResult(photo.ID, "burst"),
	}

	done := make(chan error, len(results))
	for _, res := range results {
		go func(r models.JobResult) {
			done <- dispatcher.HandleResult(ctx, r)
		}(res)
	}
	for range results {
		require.NoError(t, <-done)
	}

	stored, err := store.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusReady, stored.Status)
	assert.Len(t, stored.Variants, 3)
	require.NotNil(t, stored.CaptionAI)
}
