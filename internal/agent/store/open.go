package store

import (
	"context"
	"fmt"
	"log/slog"

	"fieldforce/internal/platform/database"
)

// OpenSQL connects to a postgres or sqlite database and returns the store with the pool
// behind it. With autoMigrate the embedded migrations are applied first.
// The caller closes the pool.
func OpenSQL(ctx context.Context, driver, url string, autoMigrate bool, logger *slog.Logger) (*SQLStore, *database.Pool, error) {
	pool, err := database.Open(ctx, database.DefaultConfig(driver, url))
	if err != nil {
		return nil, nil, err
	}
	if autoMigrate {
		applied, err := database.Migrate(ctx, pool.DB(), pool.Dialect())
		if err != nil {
			pool.Close() //nolint:errcheck // best-effort cleanup on init failure
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		if logger != nil && len(applied) > 0 {
			logger.InfoContext(ctx, "applied migrations", "driver", driver, "versions", applied)
		}
	}
	return NewSQL(pool.DB(), pool.Dialect()), pool, nil
}
