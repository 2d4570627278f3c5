package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/banshee-data/statsreport/internal/monitoring"
)

// ErrDirtySchema is returned when a previous migration stopped part way.
var ErrDirtySchema = errors.New("report schema is dirty")

// MigrateUp brings the report tables to the latest embedded schema. An
// up-to-date database is not an error.
func (db *DB) MigrateUp() error {
	return db.withMigrator(func(m *migrate.Migrate) error {
		if _, dirty, err := m.Version(); err == nil && dirty {
			return ErrDirtySchema
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply report migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown drops the report tables.
func (db *DB) MigrateDown() error {
	return db.withMigrator(func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("revert report migrations: %w", err)
		}
		return nil
	})
}

// SchemaVersion reports the applied schema version, 0 for a fresh database.
func (db *DB) SchemaVersion() (uint, error) {
	var version uint
	err := db.withMigrator(func(m *migrate.Migrate) error {
		v, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			return nil
		case err != nil:
			return err
		case dirty:
			return fmt.Errorf("%w at version %d", ErrDirtySchema, v)
		}
		version = v
		return nil
	})
	return version, err
}

// withMigrator runs fn against the embedded migrations. The migrator is not
// closed: that would close the shared *sql.DB.
func (db *DB) withMigrator(fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	m.Log = migrateLog{}
	return fn(m)
}

// migrateLog routes golang-migrate progress to the debug logger.
type migrateLog struct{}

func (migrateLog) Printf(format string, v ...interface{}) {
	monitoring.Debugf("migrate: "+format, v...)
}

func (migrateLog) Verbose() bool { return false }
