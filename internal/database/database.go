// Package database contains the logic for establishing
// connections to the relational store behind the ORM.
//
// PostgreSQL is reached through pgx: the pgx connection config carries the
// tracers, is opened as a database/sql pool via pgx/stdlib and then handed
// to GORM. SQLite is supported for local development and tests.
//
// It handles:
//   - building a DSN from config
//   - wiring query tracing/logging (pgx tracelog, New Relic nrpgx5)
//   - pool tuning
//   - opening GORM with a zerolog backed logger
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/pages-api/internal/config"
	loggerConfig "github.com/deppfellow/pages-api/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database wraps the ORM handle and the underlying pool.
//
// ORM is what repositories use. SQL is the same pool seen through
// database/sql, used for health checks and shutdown.
type Database struct {
	ORM    *gorm.DB
	SQL    *sql.DB
	Driver string
	log    *zerolog.Logger
}

// multiTracer allows chaining multiple tracers.
//
// pgx supports a single Tracer in ConnConfig, so this adapter fans out to
// the New Relic tracer and the local SQL tracelog when both are enabled.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// DatabasePingTimeout defines the number of seconds to wait for a ping
// before considering the database "unreachable".
const DatabasePingTimeout = 10

// New opens the configured database and verifies connectivity.
//
// Inputs:
//   - cfg: application config (driver, host, credentials, pool settings)
//   - logger: main app logger
//   - loggerService: optional New Relic service (nil if not configured)
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	gormLogger := loggerConfig.NewGormLogger(*logger, cfg.Observability.Logging.SlowQueryThreshold)

	var (
		db  *Database
		err error
	)

	switch cfg.Database.Driver {
	case DriverSQLite:
		db, err = NewSQLite(cfg.Database.Path, logger, gormLogger)
	default:
		db, err = newPostgres(cfg, logger, loggerService, gormLogger)
	}
	if err != nil {
		return nil, err
	}

	applyPoolSettings(db.SQL, cfg.Database)

	// Ping the DB with a timeout, so startup fails fast if DB is down.
	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.SQL.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", db.Driver).Msg("connected to the database")

	return db, nil
}

func newPostgres(
	cfg *config.Config,
	logger *zerolog.Logger,
	loggerService *loggerConfig.LoggerService,
	gormLogger gormlogger.Interface,
) (*Database, error) {
	connConfig, err := pgx.ParseConfig(PostgresDSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	var tracers []pgx.QueryTracer

	// New Relic instrumentation, only when the agent is running.
	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// In local env, log every SQL statement through pgx tracelog + zerolog.
	// This is very noisy, which is why it's only in local.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		connConfig.Tracer = tracers[0]
	default:
		connConfig.Tracer = &multiTracer{tracers: tracers}
	}

	sqlDB := stdlib.OpenDB(*connConfig)

	orm, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm postgres: %w", err)
	}

	return &Database{
		ORM:    orm,
		SQL:    sqlDB,
		Driver: DriverPostgres,
		log:    logger,
	}, nil
}

// sqliteBusyTimeout is how long a writer waits on a locked database file.
const sqliteBusyTimeout = 5 * time.Second

// NewSQLite opens a SQLite database file with foreign keys enforced and
// WAL journaling. gormLogger may be nil, in which case one is derived from
// logger.
func NewSQLite(path string, logger *zerolog.Logger, gormLogger gormlogger.Interface) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}
	if gormLogger == nil {
		gormLogger = loggerConfig.NewGormLogger(*logger, 0)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=1&_journal_mode=WAL",
		path, sqliteBusyTimeout/time.Millisecond)

	// Constraint failures surface as gorm.ErrForeignKeyViolated and
	// gorm.ErrDuplicatedKey. PostgreSQL keeps the raw *pgconn.PgError, which
	// names the offending constraint.
	orm, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sql.DB from gorm: %w", err)
	}

	// The DSN flags only apply to new connections; set them explicitly on
	// the first one as well.
	if err := orm.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return nil, fmt.Errorf("enabling foreign keys pragma: %w", err)
	}

	return &Database{
		ORM:    orm,
		SQL:    sqlDB,
		Driver: DriverSQLite,
		log:    logger,
	}, nil
}

// PostgresDSN builds a postgres:// URL from config.
//
// The password is URL-escaped so characters like ':' or '@' don't break
// the URL structure. IPv6 hosts are bracketed by net.JoinHostPort.
func PostgresDSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	encodedPassword := url.QueryEscape(cfg.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		encodedPassword,
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}
}

// Ping verifies the pool can reach the database.
func (db *Database) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	return db.SQL.Close()
}
