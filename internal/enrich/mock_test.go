package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/your-org/photodisplay/internal/models"
)

// memStore is an in-memory PhotoStore. UpdatePhoto serializes on a mutex the
// way the Postgres implementation serializes on a row lock.
type memStore struct {
	mu     sync.Mutex
	photos map[uuid.UUID]*models.Photo
}

func newMemStore() *memStore {
	return &memStore{photos: map[uuid.UUID]*models.Photo{}}
}

func (s *memStore) CreatePhoto(_ context.Context, ownerID, storageKey string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := &models.Photo{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		StorageKey: storageKey,
		Variants:   []models.Variant{},
		Exif:       models.ExifData{HasGPS: false},
		Status:     models.PhotoStatusProcessing,
		Jobs:       map[models.JobKind]models.JobOutcome{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.photos[p.ID] = p
	return clonePhoto(p), nil
}

func (s *memStore) GetPhoto(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[id]
	if !ok {
		return nil, nil
	}
	return clonePhoto(p), nil
}

func (s *memStore) UpdatePhoto(_ context.Context, id uuid.UUID, mutate func(*models.Photo) error) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[id]
	if !ok {
		return nil, nil
	}

	copy := clonePhoto(p)
	if err := mutate(copy); err != nil {
		return nil, err
	}
	copy.UpdatedAt = time.Now().UTC()
	s.photos[id] = copy
	return clonePhoto(copy), nil
}

func (s *memStore) DeletePhoto(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.photos, id)
	return nil
}

func clonePhoto(p *models.Photo) *models.Photo {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	out := &models.Photo{}
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	if out.Jobs == nil {
		out.Jobs = map[models.JobKind]models.JobOutcome{}
	}
	return out
}

// MockPublisher records published jobs and results.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJob(ctx context.Context, job models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockPublisher) PublishResult(ctx context.Context, res models.JobResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

// publishedJobs extracts the Job arguments from recorded PublishJob calls.
func publishedJobs(m *MockPublisher) []models.Job {
	var jobs []models.Job
	for _, call := range m.Calls {
		if call.Method == "PublishJob" {
			jobs = append(jobs, call.Arguments.Get(1).(models.Job))
		}
	}
	return jobs
}

// memBlobs is an in-memory BlobStore.
type memBlobs struct {
	mu        sync.Mutex
	originals map[string][]byte
	variants  map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{originals: map[string][]byte{}, variants: map[string][]byte{}}
}

func (b *memBlobs) FetchOriginal(_ context.Context, storageKey string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.originals[storageKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", storageKey)
	}
	return data, nil
}

func (b *memBlobs) PutVariant(_ context.Context, photoID uuid.UUID, size int, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := fmt.Sprintf("variants/%s/%d.jpg", photoID, size)
	b.variants[key] = data
	return key, nil
}

type stubGeocoder struct {
	place *models.Place
	err   error
}

func (g *stubGeocoder) Resolve(context.Context, float64, float64) (*models.Place, error) {
	return g.place, g.err
}

type stubCaptioner struct {
	caption string
	err     error
}

func (c *stubCaptioner) Caption(context.Context, []byte, string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return TruncateCaption(c.caption), nil
}
