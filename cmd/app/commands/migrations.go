package commands

import (
	"database/sql"
	"log/slog"

	"github.com/allisson/relay/migrations"
)

// RunMigrations applies every pending migration of dialect over an open
// connection. Returns nil if no migrations to apply.
func RunMigrations(db *sql.DB, dialect string, logger *slog.Logger) error {
	logger.Info("running database migrations", slog.String("dialect", dialect))

	m, err := migrations.New(db, dialect)
	if err != nil {
		return err
	}

	if err := migrations.Up(m); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
