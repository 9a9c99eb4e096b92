// Package main provides the entrypoint for the togstats ingest worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/togstats/togstats/internal/database"
	"github.com/togstats/togstats/internal/departure"
	"github.com/togstats/togstats/internal/entur"
	"github.com/togstats/togstats/internal/entur/gtfsrt"
	"github.com/togstats/togstats/internal/ingest"
	"github.com/togstats/togstats/internal/provider/resilience"
	"github.com/togstats/togstats/internal/region"
	"github.com/togstats/togstats/internal/stats"
	"github.com/togstats/togstats/internal/telemetry"
	"github.com/togstats/togstats/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "togstats-worker"

	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting togstats worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Entur requires a client name identifying the consumer.
	etClientName := os.Getenv("ET_CLIENT_NAME")
	if etClientName == "" {
		etClientName = "togstats-dev"
		log.Warn().Msg("ET_CLIENT_NAME not set - using development default")
	}

	registry := resilience.NewRegistry()

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	boards := entur.NewClient(entur.ClientConfig{
		ClientName: etClientName,
		Registry:   registry,
		Metrics:    providerMetrics,
		Logger:     log,
	})

	reg := region.Oslo()
	statsService := stats.NewService(stats.NewPostgresRepository(pool), log)

	pipelineCfg := ingest.Config{
		Region:     reg,
		Boards:     boards,
		Stats:      statsService,
		Departures: departure.NewPostgresRepository(pool),
		Logger:     log,
	}

	// The GTFS-RT feed supplements the station boards. Optional.
	if os.Getenv("GTFSRT_ENABLED") == "true" {
		feed := gtfsrt.NewClient(gtfsrt.ClientConfig{
			ClientName: etClientName,
			Registry:   registry,
			Metrics:    providerMetrics,
			Logger:     log,
		})
		pipelineCfg.Sources = []ingest.Source{feed}
		log.Info().Msg("gtfs-rt feed enabled")
	}

	pipeline, err := ingest.NewPipeline(pipelineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ingest pipeline")
	}

	jobConfig := worker.DefaultJobConfig()
	if raw := os.Getenv("INGEST_INTERVAL"); raw != "" {
		interval, parseErr := time.ParseDuration(raw)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Msg("invalid INGEST_INTERVAL")
		}
		jobConfig.Interval = interval
	}

	job := worker.NewIngestJob(worker.IngestJobConfig{
		Config:   jobConfig,
		Pipeline: pipeline,
		Logger:   log,
	})

	// Optional Pub/Sub trigger subscription
	var pubsubHandler *worker.PubSubHandler
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		pubsubHandler, err = worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Job:              job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := pubsubHandler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured - running on schedule only")
	}

	// Health endpoint for the platform's liveness probe.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Fatal().Err(serveErr).Msg("health server error")
		}
	}()

	go func() {
		if runErr := job.Start(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			log.Error().Err(runErr).Msg("ingest loop exited")
		}
	}()

	if pubsubHandler != nil {
		go func() {
			if recvErr := pubsubHandler.Start(ctx); recvErr != nil && !errors.Is(recvErr, context.Canceled) {
				log.Error().Err(recvErr).Msg("pubsub handler exited")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
