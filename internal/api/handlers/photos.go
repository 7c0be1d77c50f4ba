package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/photodisplay/internal/enrich"
	"github.com/your-org/photodisplay/internal/models"
	"github.com/your-org/photodisplay/pkg/dto"
)

// PhotoStore is the persistence surface the photo handlers need.
type PhotoStore interface {
	GetOwnedPhoto(ctx context.Context, id uuid.UUID, ownerID string) (*models.Photo, error)
	ListPhotos(ctx context.Context, ownerID string) ([]models.Photo, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, mutate func(*models.Photo) error) (*models.Photo, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

// Dispatcher triggers job emission for uploads and retries.
type Dispatcher interface {
	SubmitUpload(ctx context.Context, ownerID, storageKey string) (*models.Photo, error)
	Retry(ctx context.Context, photoID uuid.UUID) (*models.Photo, error)
}

// BlobDeleter removes a photo's stored objects when the photo is deleted.
type BlobDeleter interface {
	DeletePhotoObjects(ctx context.Context, photoID uuid.UUID, storageKey string) error
}

type PhotoHandler struct {
	store      PhotoStore
	dispatcher Dispatcher
	blobs      BlobDeleter
}

func NewPhotoHandler(store PhotoStore, dispatcher Dispatcher, blobs BlobDeleter) *PhotoHandler {
	return &PhotoHandler{store: store, dispatcher: dispatcher, blobs: blobs}
}

// Upload accepts already-validated (owner, storage key) pairs and triggers
// job emission for each. Responds 202: enrichment happens asynchronously.
func (h *PhotoHandler) Upload(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		photo, err := h.dispatcher.SubmitUpload(c.Request.Context(), req.OwnerID, item.StorageKey)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ids = append(ids, photo.ID)
	}

	c.JSON(http.StatusAccepted, dto.UploadResponse{PhotoIDs: ids})
}

func (h *PhotoHandler) List(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}

	photos, err := h.store.ListPhotos(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, photoToResponse(&p))
	}
	c.JSON(http.StatusOK, dto.PhotoListResponse{Photos: resp, Total: len(resp)})
}

func (h *PhotoHandler) Get(c *gin.Context) {
	photo, ok := h.ownedPhoto(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, photoToResponse(photo))
}

// UpdateLocation sets the user location override. The override always wins
// over the geocoded place in the displayed value.
func (h *PhotoHandler) UpdateLocation(c *gin.Context) {
	photo, ok := h.ownedPhoto(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdatePhoto(c.Request.Context(), photo.ID, func(p *models.Photo) error {
		p.LocationOverride = &models.Place{
			Label:   req.Label,
			Country: req.Country,
			Lat:     req.Lat,
			Lon:     req.Lon,
			Source:  "user",
		}
		p.PlaceDisplay = enrich.DisplayPlace(p)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	c.JSON(http.StatusOK, photoToResponse(updated))
}

// ClearLocationOverride removes the override; the displayed place reverts to
// the geocoded one, if any.
func (h *PhotoHandler) ClearLocationOverride(c *gin.Context) {
	photo, ok := h.ownedPhoto(c)
	if !ok {
		return
	}

	updated, err := h.store.UpdatePhoto(c.Request.Context(), photo.ID, func(p *models.Photo) error {
		p.LocationOverride = nil
		p.PlaceDisplay = enrich.DisplayPlace(p)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	c.JSON(http.StatusOK, photoToResponse(updated))
}

func (h *PhotoHandler) UpdateNote(c *gin.Context) {
	photo, ok := h.ownedPhoto(c)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdatePhoto(c.Request.Context(), photo.ID, func(p *models.Photo) error {
		note := req.Note
		p.NoteUser = &note
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	c.JSON(http.StatusOK, photoToResponse(updated))
}

// Retry re-dispatches enrichment for an errored photo.
func (h *PhotoHandler) Retry(c *gin.Context) {
	photo, ok := h.ownedPhoto(c)
	if !ok {
		return
	}

	if photo.Status != models.PhotoStatusError {
		c.JSON(http.StatusConflict, gin.H{"error": "only errored photos can be retried"})
		return
	}

	updated, err := h.dispatcher.Retry(c.Request.Context(), photo.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	c.JSON(http.StatusAccepted, photoToResponse(updated))
}

// Delete removes the photo row and its stored objects. In-flight job results
// for the photo become no-ops once the row is gone.
func (h *PhotoHandler) Delete(c *gin.Context) {
	photo, ok := h.ownedPhoto(c)
	if !ok {
		return
	}

	if err := h.store.DeletePhoto(c.Request.Context(), photo.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.blobs.DeletePhotoObjects(c.Request.Context(), photo.ID, photo.StorageKey); err != nil {
		slog.Warn("delete photo objects", "photo", photo.ID, "error", err)
	}

	c.Status(http.StatusNoContent)
}

// ownedPhoto loads the photo from the :id param scoped to the owner_id query
// and writes the error response itself when that fails.
func (h *PhotoHandler) ownedPhoto(c *gin.Context) (*models.Photo, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return nil, false
	}

	ownerID := c.Query("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return nil, false
	}

	photo, err := h.store.GetOwnedPhoto(c.Request.Context(), id, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return nil, false
	}
	return photo, true
}

func photoToResponse(p *models.Photo) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:               p.ID,
		OwnerID:          p.OwnerID,
		StorageKey:       p.StorageKey,
		Variants:         p.Variants,
		CaptionAI:        p.CaptionAI,
		NoteUser:         p.NoteUser,
		Exif:             p.Exif,
		PlaceAuto:        p.PlaceAuto,
		LocationOverride: p.LocationOverride,
		PlaceDisplay:     p.PlaceDisplay,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}
