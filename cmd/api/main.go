package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/photodisplay/internal/api"
	"github.com/your-org/photodisplay/internal/config"
	"github.com/your-org/photodisplay/internal/enrich"
	"github.com/your-org/photodisplay/internal/models"
	"github.com/your-org/photodisplay/internal/observability"
	"github.com/your-org/photodisplay/internal/queue"
	"github.com/your-org/photodisplay/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting photodisplay API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	merger := enrich.NewMerger(db)
	dispatcher := enrich.NewDispatcher(db, producer, merger)

	// Consume job results and merge them into photo records.
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create result consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeResults(ctx, "photo-merger", func(ctx context.Context, msg jetstream.Msg) error {
		var res models.JobResult
		if err := json.Unmarshal(msg.Data(), &res); err != nil {
			slog.Error("unmarshal job result", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		if err := dispatcher.HandleResult(ctx, res); err != nil {
			return fmt.Errorf("handle %s result for %s: %w", res.Kind, res.PhotoID, err)
		}
		return nil
	})
	if err != nil {
		slog.Error("start result consumer", "error", err)
		os.Exit(1)
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:     cfg.Server.APIKey,
		DB:         db,
		MinIO:      minioStore,
		Producer:   producer,
		Dispatcher: dispatcher,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
