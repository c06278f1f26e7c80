package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"leadpilot.com/lead-qualifier/internal/api"
	"leadpilot.com/lead-qualifier/internal/config"
	"leadpilot.com/lead-qualifier/internal/core"
	"leadpilot.com/lead-qualifier/internal/events"
	"leadpilot.com/lead-qualifier/internal/observability/logging"
	"leadpilot.com/lead-qualifier/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := logging.WithComponent("server")

	ctx := context.Background()

	llmService, err := core.NewLLMService(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize assistant client")
	}
	defer llmService.Close()

	leadStore, closeStore, err := newLeadStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize lead store")
	}
	defer closeStore()

	publisher := events.New(&events.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		Enabled: cfg.KafkaEnabled,
	})
	defer publisher.Close()

	workflow := core.NewWorkflowClient(cfg)
	scorer := core.NewScoringService(workflow, cfg)
	finalizer := core.NewFinalizeService(llmService, scorer, leadStore, publisher)

	apiHandler := api.NewAPIHandler(llmService, finalizer, scorer)
	router := api.NewRouter(apiHandler)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: SSE responses hold the connection open for the
		// whole assistant stream.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("leadStore", cfg.LeadStore).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exited gracefully")
}

// newLeadStore builds the persistence sink selected by configuration.
func newLeadStore(cfg *config.Config) (core.LeadStore, func(), error) {
	switch cfg.LeadStore {
	case config.StoreAirtable:
		return store.NewAirtableStore(cfg), func() {}, nil
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case config.StoreFile:
		return store.NewFileStore(cfg.LeadLogPath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown lead store %q", cfg.LeadStore)
	}
}
