// Package app opens the configured record store for the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fkhayef/invoicevista/internal/auth"
	"github.com/fkhayef/invoicevista/internal/config"
	"github.com/fkhayef/invoicevista/internal/database"
	"github.com/fkhayef/invoicevista/internal/store"
)

// Store is an opened record store and the resources behind it
type Store struct {
	store.Store
	DB *sql.DB // nil for the memory driver
}

// Close releases the database pool, if any
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStore connects the store selected by cfg.StoreDriver. With migrate set
// the Postgres schema is brought up to date first.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return &Store{Store: store.NewMemory()}, nil

	case config.StoreDriverPostgres:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Connected to database successfully")

		if migrate {
			if err := database.Migrate(ctx, db, log); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &Store{Store: store.NewPostgres(db), DB: db}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Seed loads the demo data with passwords hashed at the configured cost
func Seed(ctx context.Context, s store.Store, cfg *config.Config) error {
	if err := store.Seed(ctx, s, auth.Hasher(cfg.BcryptCost)); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	return nil
}
