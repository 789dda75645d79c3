// Package database provides the persistence adapter: record models, the Store
// interface and its SQLite and MongoDB implementations.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/relaybot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// SchemaVersion is the migration version the embedded migrations bring a
// database to.
const SchemaVersion uint = 3

// sqliteBusyTimeout bounds how long a connection waits on a lock held by
// another process, such as a concurrent `relaybot migrate`.
const sqliteBusyTimeout = 5 * time.Second

// OpenSQLite opens the SQLite database at dbPath without touching the schema.
func OpenSQLite(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", sqliteBusyTimeout.Milliseconds())); err != nil {
		CloseDB(db)
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// NewDB opens the SQLite database at dbPath and brings its schema up to
// SchemaVersion.
func NewDB(dbPath string) (*sqlx.DB, error) {
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	version, err := ApplyMigrations(db.DB, ExtractDBNameFromPath(dbPath))
	if err != nil {
		CloseDB(db)
		return nil, err
	}

	slog.Info("SQLite store ready", "path", dbPath, "schema_version", version)
	return db, nil
}

// CloseDB closes the database connection pool.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
		return
	}
	slog.Debug("SQLite connection closed")
}

// ApplyMigrations applies the pending embedded migrations and returns the
// resulting schema version. A database left dirty by an interrupted
// migration is reported as an error instead of being migrated further.
func ApplyMigrations(db *sql.DB, dbName string) (uint, error) {
	if db == nil {
		return 0, errors.New("database connection is nil, cannot apply migrations")
	}
	if dbName == "" {
		return 0, errors.New("database name for migration driver is empty")
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	target, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{DatabaseName: dbName})
	if err != nil {
		return 0, fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrator: %w", err)
	}

	before, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		before = 0
	case err != nil:
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	case dirty:
		return before, fmt.Errorf("schema version %d is dirty, fix it and force the version with the migrate CLI", before)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, fmt.Errorf("failed to migrate schema from version %d: %w", before, err)
	}

	after, _, err := migrator.Version()
	if err != nil {
		return before, fmt.Errorf("failed to read schema version: %w", err)
	}
	if after != before {
		slog.Info("Applied schema migrations", "database_name", dbName, "from_version", before, "to_version", after)
	}
	return after, nil
}

// ExtractDBNameFromPath strips a "file:" prefix and query parameters from a
// SQLite DSN and returns the decoded file path.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")

	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}

	return path
}
