package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/remind-api/internal/config"
	"github.com/phrazzld/remind-api/internal/platform/localstore"
	"github.com/phrazzld/remind-api/internal/platform/postgres"
	"github.com/phrazzld/remind-api/internal/store"
)

// Storage drivers accepted in storage.driver.
const (
	storageDriverDiskv    = "diskv"
	storageDriverPostgres = "postgres"
)

type stores struct {
	todos       store.TodoStore
	preferences store.PreferenceStore

	// db is set for the postgres driver so it can be closed on shutdown.
	db *sql.DB
}

// openStores opens the configured storage backend. The postgres schema is
// migrated up before use.
func openStores(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*stores, error) {
	switch cfg.Driver {
	case storageDriverDiskv:
		s, err := localstore.Open(cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		logger.Info("using local key/value storage", "path", cfg.Path)
		return &stores{todos: s, preferences: s}, nil

	case storageDriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("using postgres storage")
		return &stores{
			todos:       postgres.NewPostgresTodoStore(db, logger),
			preferences: postgres.NewPostgresPreferenceStore(db, logger),
			db:          db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
