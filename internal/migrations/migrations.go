package migrations

import (
	_ "embed"

	"github.com/earthshout/shout-indexer/internal/db"
	"github.com/earthshout/shout-indexer/pkg/config"
)

//go:embed 001_indexer_state.sql
var mig001 string

//go:embed 002_shout_events.sql
var mig002 string

// RunMigrations brings the indexer database at the configured path up to the
// current schema.
func RunMigrations(cfg config.DatabaseConfig) error {
	migrations := []db.Migration{
		{
			ID:  "001_indexer_state.sql",
			SQL: mig001,
		},
		{
			ID:  "002_shout_events.sql",
			SQL: mig002,
		},
	}

	return db.RunMigrations(cfg.Path, migrations)
}
