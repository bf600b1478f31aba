// Package migration applies the embedded schema migrations and records the
// resulting schema version so serving processes can refuse to start against
// a stale database.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrateTimeout = 2 * time.Minute

// RunMigrations applies every embedded migration under an advisory lock,
// seeds the immutable system rows, and activates the bootstrap state. Only
// the migrate entrypoint calls this; serving processes just verify.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration requires a database handle")
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	unlock, err := acquireAdvisoryLock(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		_ = unlock(context.Background())
	}()

	wantVersion, err := LatestMigrationVersion()
	if err != nil {
		return err
	}
	checksum, err := MigrationsChecksum()
	if err != nil {
		return err
	}

	migrator, err := newMigrator(db)
	if err != nil {
		return err
	}

	if _, err := currentCleanVersion(migrator); err != nil {
		return err
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	gotVersion, err := currentCleanVersion(migrator)
	if err != nil {
		return err
	}
	if gotVersion != wantVersion {
		return fmt.Errorf("schema version after migrate: got %d want %d", gotVersion, wantVersion)
	}

	if err := seedSystemImmutableData(ctx, db); err != nil {
		return err
	}
	return activateSystemBootstrapState(ctx, db, fmt.Sprintf("%d", wantVersion), checksum)
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

// currentCleanVersion reads the applied version and refuses to proceed on a
// dirty state; a half-applied migration needs an operator, not a retry.
func currentCleanVersion(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("migrations dirty at version %d", version)
	}
	return version, nil
}
