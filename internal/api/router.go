package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/photodisplay/internal/api/handlers"
	"github.com/your-org/photodisplay/internal/auth"
	"github.com/your-org/photodisplay/internal/enrich"
	"github.com/your-org/photodisplay/internal/queue"
	"github.com/your-org/photodisplay/internal/storage"
)

type RouterConfig struct {
	APIKey     string
	DB         *storage.PostgresStore
	MinIO      *storage.MinIOStore
	Producer   *queue.Producer
	Dispatcher *enrich.Dispatcher
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	photoH := handlers.NewPhotoHandler(cfg.DB, cfg.Dispatcher, cfg.MinIO)
	v1.POST("/photos/upload", photoH.Upload)
	v1.GET("/photos", photoH.List)
	v1.GET("/photos/:id", photoH.Get)
	v1.PATCH("/photos/:id/location", photoH.UpdateLocation)
	v1.DELETE("/photos/:id/location/override", photoH.ClearLocationOverride)
	v1.PATCH("/photos/:id/note", photoH.UpdateNote)
	v1.POST("/photos/:id/retry", photoH.Retry)
	v1.DELETE("/photos/:id", photoH.Delete)

	settingsH := handlers.NewSettingsHandler(cfg.DB)
	v1.GET("/settings", settingsH.Get)
	v1.PATCH("/settings", settingsH.Update)

	return r
}
