package enrich

import (
	"context"

	"github.com/google/uuid"

	"github.com/your-org/photodisplay/internal/models"
)

// PhotoStore is the persistence surface the pipeline needs. UpdatePhoto must
// apply the mutator atomically per photo (the Postgres implementation holds a
// row lock) and return (nil, nil) when the photo no longer exists.
type PhotoStore interface {
	CreatePhoto(ctx context.Context, ownerID, storageKey string) (*models.Photo, error)
	GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, mutate func(*models.Photo) error) (*models.Photo, error)
}

// BlobStore is the object-storage surface: originals in, variants out.
type BlobStore interface {
	FetchOriginal(ctx context.Context, storageKey string) ([]byte, error)
	PutVariant(ctx context.Context, photoID uuid.UUID, size int, data []byte) (string, error)
}

// JobPublisher hands jobs and results to the transport.
type JobPublisher interface {
	PublishJob(ctx context.Context, job models.Job) error
	PublishResult(ctx context.Context, res models.JobResult) error
}
