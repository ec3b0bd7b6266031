package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/pages-api/internal/config"
	"github.com/deppfellow/pages-api/internal/model"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// Embed all SQL files under migrations/ at compile time.
// The binary carries its migrations, so nothing is read from disk at runtime.
//
//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the configured database schema up to date.
//
// PostgreSQL runs the embedded tern migrations; SQLite, which only serves
// local development and tests, is migrated from the GORM models.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	if cfg.Database.Driver == DriverSQLite {
		db, err := NewSQLite(cfg.Database.Path, logger, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		return db.AutoMigrate(ctx)
	}

	return migratePostgres(ctx, logger, cfg)
}

// migratePostgres runs database migrations using jackc/tern.
//
// Behavior:
//   - Connect using pgx (single connection, not a pool)
//   - Create tern migrator and load embedded migrations
//   - Run migrations to latest
//   - Log whether it was already up-to-date or migrated
func migratePostgres(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, PostgresDSN(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	// Migration version is tracked in the schema_version table.
	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("applying database migrations: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

// AutoMigrate creates or updates tables from the GORM models.
func (db *Database) AutoMigrate(ctx context.Context) error {
	if err := db.ORM.WithContext(ctx).AutoMigrate(&model.User{}, &model.Page{}, &model.Task{}); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	db.log.Info().Str("driver", db.Driver).Msg("database schema migrated from models")
	return nil
}
