package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hmnguyen-dev/tutien-engine/internal/config"
	"github.com/hmnguyen-dev/tutien-engine/internal/handlers"
	"github.com/hmnguyen-dev/tutien-engine/internal/logger"
	"github.com/hmnguyen-dev/tutien-engine/internal/middleware"
	"github.com/hmnguyen-dev/tutien-engine/internal/services"
	"github.com/hmnguyen-dev/tutien-engine/internal/storage"
	"github.com/hmnguyen-dev/tutien-engine/internal/turn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Tu Tiên Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage", cfg.StorageBackend,
		"narrator", cfg.Narrator)

	var narrator services.NarratorService
	switch cfg.Narrator {
	case config.NarratorAnthropic:
		narrator = services.NewAnthropicNarrator(cfg.AnthropicAPIKey, cfg.AnthropicModel, log)
		log.Info("Using Anthropic narrator", "model", cfg.AnthropicModel)
	case config.NarratorOpenAI:
		narrator = services.NewOpenAINarrator(cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
		log.Info("Using OpenAI narrator", "model", cfg.OpenAIModel)
	case config.NarratorMock:
		narrator = &services.MockNarrator{}
		log.Warn("Using mock narrator; turns are served from the deterministic fallback")
	default:
		log.Error("Invalid narrator specified", "narrator", cfg.Narrator)
		os.Exit(1)
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case config.BackendRedis:
		store, err = storage.NewRedisStore(cfg.RedisURL, log)
	case config.BackendSQLite:
		store, err = storage.NewSQLiteStore(cfg.SQLitePath, log)
	default:
		log.Error("Invalid storage backend specified", "backend", cfg.StorageBackend)
		os.Exit(1)
	}
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established")

	content, err := storage.LoadContent(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load content tables", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	log.Info("Content tables loaded", "dir", cfg.DataDir,
		"scenes", len(content.ListScenes()), "activities", len(content.ListActivities()))

	processor := turn.NewTurnProcessor(store, content, narrator, cfg.ContentRating, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, narrator, log))

	runsHandler := handlers.NewRunsHandler(store, log)
	mux.Handle("/v1/runs", runsHandler)
	mux.Handle("/v1/runs/", runsHandler)

	mux.Handle("/v1/turn", handlers.NewTurnHandler(processor, log))
	mux.Handle("/v1/scenes", handlers.NewScenesHandler(content, log))
	mux.Handle("/v1/activities", handlers.NewActivitiesHandler(content, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
