package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/photodisplay/internal/models"
	"github.com/your-org/photodisplay/pkg/dto"
)

// SettingsStore is the persistence surface for per-user display settings.
type SettingsStore interface {
	GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	UpdateUserSettings(ctx context.Context, userID string, detailOnly *bool, slideshowIntervalSec *int) (*models.UserSettings, error)
}

type SettingsHandler struct {
	store SettingsStore
}

func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get returns the user's settings. 404 until the first update creates them.
func (h *SettingsHandler) Get(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	settings, err := h.store.GetUserSettings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "settings not found"})
		return
	}

	c.JSON(http.StatusOK, settingsToResponse(settings))
}

// Update applies a partial settings change, creating the row with defaults
// on first use. Omitted fields keep their current value.
func (h *SettingsHandler) Update(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.store.UpdateUserSettings(c.Request.Context(), userID, req.DetailOnly, req.SlideshowIntervalSec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settingsToResponse(settings))
}

func settingsToResponse(s *models.UserSettings) dto.SettingsResponse {
	return dto.SettingsResponse{
		UserID:               s.UserID,
		DetailOnly:           s.DetailOnly,
		SlideshowIntervalSec: s.SlideshowIntervalSec,
		UpdatedAt:            s.UpdatedAt.Format(time.RFC3339),
	}
}
