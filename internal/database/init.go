package database

import (
	"context"
	"fmt"

	"github.com/yourusername/theory-engine/internal/config"
)

// Initialize creates a database connection pool and verifies the fact tables
// the evaluation core reads from are present.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// The core only reads games and odds; fail fast when the fact schema is
	// missing rather than at first query.
	for _, table := range []string{"games", "odds"} {
		var exists bool
		err = db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to check fact schema: %w", err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf("fact table %q not found; run the data layer migrations first", table)
		}
	}

	return db, nil
}
