package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/your-org/photodisplay/internal/models"
)

type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) GetOwnedPhoto(ctx context.Context, id uuid.UUID, ownerID string) (*models.Photo, error) {
	args := m.Called(ctx, id, ownerID)
	if p := args.Get(0); p != nil {
		return p.(*models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotoStore) ListPhotos(ctx context.Context, ownerID string) ([]models.Photo, error) {
	args := m.Called(ctx, ownerID)
	if p := args.Get(0); p != nil {
		return p.([]models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotoStore) UpdatePhoto(ctx context.Context, id uuid.UUID, mutate func(*models.Photo) error) (*models.Photo, error) {
	args := m.Called(ctx, id, mutate)
	if p := args.Get(0); p != nil {
		photo := p.(*models.Photo)
		if err := mutate(photo); err != nil {
			return nil, err
		}
		return photo, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotoStore) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SubmitUpload(ctx context.Context, ownerID, storageKey string) (*models.Photo, error) {
	args := m.Called(ctx, ownerID, storageKey)
	if p := args.Get(0); p != nil {
		return p.(*models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDispatcher) Retry(ctx context.Context, photoID uuid.UUID) (*models.Photo, error) {
	args := m.Called(ctx, photoID)
	if p := args.Get(0); p != nil {
		return p.(*models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	args := m.Called(ctx, userID)
	if s := args.Get(0); s != nil {
		return s.(*models.UserSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsStore) UpdateUserSettings(ctx context.Context, userID string, detailOnly *bool, slideshowIntervalSec *int) (*models.UserSettings, error) {
	args := m.Called(ctx, userID, detailOnly, slideshowIntervalSec)
	if s := args.Get(0); s != nil {
		return s.(*models.UserSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBlobDeleter struct {
	mock.Mock
}

func (m *MockBlobDeleter) DeletePhotoObjects(ctx context.Context, photoID uuid.UUID, storageKey string) error {
	args := m.Called(ctx, photoID, storageKey)
	return args.Error(0)
}
