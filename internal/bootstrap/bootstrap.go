// Package bootstrap assembles the engine's services from configuration.
package bootstrap

import (
	"fmt"

	"mediasweep/internal/adapters/filesystem"
	"mediasweep/internal/adapters/imaging"
	"mediasweep/internal/adapters/sqlite"
	"mediasweep/internal/application"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/config"
	"mediasweep/internal/logging"
)

// Runtime is an opened set of adapters behind the command services
type Runtime struct {
	Config    *config.Config
	DB        *sqlite.DB
	Documents *sqlite.DocumentStore
	Storage   *filesystem.Storage
	Services  *commands.Services
}

// InitLogging applies the log section of cfg to the global logger
func InitLogging(cfg *config.Config) {
	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		File:   cfg.Log.File,
	})
}

// Open connects the database and storage tree named by cfg
func Open(cfg *config.Config) (*Runtime, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := filesystem.NewStorage(cfg.Storage.Root, cfg.Storage.PublicURL, cfg.Storage.Exclude)
	documents := sqlite.NewDocumentStore(db)

	svc := &commands.Services{
		Documents:         documents,
		Media:             sqlite.NewMediaStore(db, storage),
		Files:             storage,
		Resizer:           imaging.NewResizer(storage, cfg.Variants.Quality),
		Ledger:            sqlite.NewLedger(db),
		Locker:            application.NewAssetLocker(),
		Boxes:             cfg.Variants.Boxes,
		BigImageThreshold: cfg.Variants.BigImageThreshold,
	}

	logging.Debug().
		Str("database", db.Path()).
		Str("storage", storage.Root()).
		Int("boxes", len(svc.Boxes)).
		Msg("services ready")

	return &Runtime{
		Config:    cfg,
		DB:        db,
		Documents: documents,
		Storage:   storage,
		Services:  svc,
	}, nil
}

// Close releases the database
func (r *Runtime) Close() error {
	return r.DB.Close()
}
