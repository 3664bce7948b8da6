package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HarshMohan14/zambara/internal/config"
	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/migrations"
)

// OpenStore opens the document store selected by cfg.StoreDriver. For libSQL
// it also creates the database directory and applies migrations.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverFirestore:
		if cfg.FirestoreEmulatorHost != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.FirestoreEmulatorHost)
		}
		client, err := OpenFirestore(ctx, cfg.FirestoreProjectID, cfg.FirestoreEmulatorHost)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to firestore",
			"project", cfg.FirestoreProjectID,
			"emulator", cfg.FirestoreEmulatorHost != "",
		)
		return docstore.NewFirestore(client), nil

	case config.DriverLibSQL:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating db dir: %w", err)
			}
		}
		db, err := Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("connecting to libsql: %w", err)
		}
		if err := migrations.Run(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to libsql", "path", cfg.DBPath)
		return docstore.NewLibSQL(db), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
