package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shardviz/shardviz/internal/config"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/router"
	"github.com/shardviz/shardviz/internal/store"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Viz service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Setup snapshot store over the run directory
	logger.Info("Opening snapshot store", "data_root", cfg.Store.DataRoot)
	fileStore := store.NewFileStore(cfg.Store.DataRoot, logger)

	// Optional read-through cache (configurable backend)
	cache, err := store.NewCache(cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", "error", err)
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
		logger.Info("Snapshot cache enabled", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)
	} else {
		logger.Info("Snapshot cache disabled")
	}
	snapshotStore := store.NewCachedStore(fileStore, cache)

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	// Initialize router
	app := router.New(logger, snapshotStore, *cfg)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
