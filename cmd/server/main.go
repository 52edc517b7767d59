package main

import (
	"github.com/sirupsen/logrus"

	"github.com/similarity-engine/backend/internal/api"
	"github.com/similarity-engine/backend/internal/catalog"
	"github.com/similarity-engine/backend/internal/config"
	"github.com/similarity-engine/backend/internal/engine"
	"github.com/similarity-engine/backend/internal/storage"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "similarity-api")

	entry.Info("Starting Similarity Engine API Service")

	// 1. Config
	cfg := config.Load()

	// 2. Snapshot Storage
	store, err := openStorage(cfg)
	if err != nil {
		entry.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// 3. Catalog
	movies, err := catalog.LoadCSV(cfg.Dataset.MoviesPath)
	if err != nil {
		entry.Fatalf("Failed to load catalog: %v", err)
	}
	entry.Infof("Loaded %d movies from %s", len(movies), cfg.Dataset.MoviesPath)

	// 4. Engine
	eng, err := engine.NewEngine(cfg, entry, store, movies)
	if err != nil {
		entry.Fatalf("Failed to initialize engine: %v", err)
	}

	// 5. Index: restore the persisted snapshot when present, otherwise
	// build from the catalog.
	if err := eng.RestoreSnapshot(); err != nil {
		entry.WithError(err).Info("No usable snapshot, building index from catalog")
		if err := eng.BuildIndex(); err != nil {
			entry.Fatalf("Failed to build index: %v", err)
		}
	}

	// 6. API Server
	server := api.NewServer(eng, entry)

	entry.Infof("Similarity Engine API ready on %s", cfg.Server.Addr)
	if err := server.Start(cfg.Server.Addr); err != nil {
		entry.Fatal(err)
	}
}

func openStorage(cfg *config.Config) (storage.SnapshotStore, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Storage.Path)
	default:
		return storage.NewFileStore(cfg.Storage.Path)
	}
}
