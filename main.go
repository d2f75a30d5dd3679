package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/boardvault/backup"
	"github.com/wfunc/boardvault/collection"
	"github.com/wfunc/boardvault/config"
	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/lookup"
	"github.com/wfunc/boardvault/models"
	"github.com/wfunc/boardvault/monitor"
	"github.com/wfunc/boardvault/persistence"
	"github.com/wfunc/boardvault/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize primary store
	primary, err := persistence.NewGormSQLite(cfg.Storage.Path)
	if err != nil {
		logger.Log.Fatalf("Failed to open database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	mon := monitor.NewMonitor("boardvault")
	mon.StartServer(cfg.Server.MetricsAddress)

	gateway := persistence.NewGateway(
		primary,
		persistence.NewLegacyFile(cfg.Storage.LegacyPath),
		persistence.NewSeed(cfg.Storage.SeedPath),
	)
	gateway.OnSave = mon.ObserveSave

	// Populate the collection through the tier chain
	store := collection.NewStore(gateway)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		logger.Log.Fatalf("Failed to load collection: %v", err)
	}
	logger.Log.Infof("Loaded %d games", store.Len())

	// Metadata lookup is optional; without a key the endpoint reports
	// itself unavailable and everything else keeps working.
	var metadata server.MetadataLookup
	apiKey := cfg.Gemini.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey != "" {
		client, err := lookup.NewClient(ctx, apiKey, cfg.Gemini.Model)
		if err != nil {
			logger.Log.Warnf("Metadata lookup disabled: %v", err)
		} else {
			metadata = client
		}
	} else {
		logger.Log.Info("No Gemini API key configured, metadata lookup disabled.")
	}

	// Periodic snapshot backups
	scheduler := backup.NewScheduler(cfg.Backup.Dir, cfg.Backup.Interval, func() []models.BoardGame {
		return store.Games()
	})
	scheduler.Start()

	vault := server.NewVaultServer(cfg.Server.HTTPAddress, store, metadata, mon)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := vault.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("Server shutdown error: %v", err)
		}
		scheduler.Stop()
		if err := store.Flush(shutdownCtx); err != nil {
			logger.Log.Errorf("Final save failed: %v", err)
		}
		store.Close()
		primary.Close()
	}()

	// Start Server
	logger.Log.Infof("Starting vault server on %s", cfg.Server.HTTPAddress)
	if err := vault.Start(); err != nil {
		logger.Log.Infof("Server stopped: %v", err)
	}
}
