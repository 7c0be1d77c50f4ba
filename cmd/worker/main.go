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
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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

	slog.Info("starting photodisplay enrichment worker",
		"workers", cfg.Enrich.WorkerCount,
		"sizes", cfg.Enrich.Sizes,
		"cpu_cores", runtime.NumCPU(),
	)

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

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	worker := enrich.NewWorker(
		db,
		minioStore,
		enrich.NewDerivativeGenerator(cfg.Enrich.Sizes, cfg.Enrich.JPEGQuality),
		enrich.NewNominatimGeocoder(cfg.Geocode),
		enrich.NewHTTPCaptioner(cfg.Caption),
		cfg.Caption.Language,
	)

	// Create NATS consumer
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming enrichment jobs
	err = consumer.ConsumeJobs(ctx, "enrichment-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var job models.Job
		if err := json.Unmarshal(msg.Data(), &job); err != nil {
			slog.Error("unmarshal job", "error", err)
			return nil // Don't retry on unmarshal errors
		}

		res, err := worker.Process(ctx, job)
		if err != nil {
			return fmt.Errorf("process %s job for %s: %w", job.Kind, job.PhotoID, err)
		}

		if err := producer.PublishResult(ctx, res); err != nil {
			return fmt.Errorf("publish %s result for %s: %w", job.Kind, job.PhotoID, err)
		}
		return nil
	}, cfg.Enrich.WorkerCount)
	if err != nil {
		slog.Error("start job consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("worker metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report queue depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := producer.QueueDepth(ctx)
				if err == nil {
					observability.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}
