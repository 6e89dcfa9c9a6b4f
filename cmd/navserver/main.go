package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/kb-nav/config"
	"github.com/romangod6/kb-nav/internal/api"
	"github.com/romangod6/kb-nav/internal/navigation"
	"github.com/romangod6/kb-nav/internal/storage"
	"github.com/romangod6/kb-nav/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, err := utils.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	logger, err := utils.NewLogger("navserver", level, cfg.Log.Dir)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	policy, err := navigation.ParseOrderPolicy(cfg.Navigation.OrderPolicy)
	if err != nil {
		log.Fatalf("Invalid navigation order policy: %v", err)
	}

	// Initialize storage
	store, err := storage.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	logger.LogInfo("Using %s store, order policy %s", cfg.Database.Driver, policy)

	server := api.NewServer(cfg.Server.Port, store, policy, logger)

	go func() {
		logger.LogInfo("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.LogError("API server stopped: %v", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server, logger)
}

func waitForShutdown(server *api.Server, logger *utils.Logger) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.LogInfo("Shutting down...")

	// Graceful server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Error shutting down server: %v", err)
	}
	logger.LogInfo("Server shut down gracefully")
}
