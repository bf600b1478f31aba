// Package bootstrap holds the startup checks for serving processes: the
// schema must be current before any request or scheduler tick touches the
// database, and the configured admin API key must exist.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/policywaylabs/policyway/internal/migration"
	"gorm.io/gorm"
)

var (
	ErrBootstrapStateInactive = errors.New("bootstrap: system state is not active")
	ErrSchemaVersionMismatch  = errors.New("bootstrap: schema version mismatch")
	ErrSchemaChecksumMismatch = errors.New("bootstrap: schema checksum mismatch")
)

// SchemaGate verifies the database was migrated by the migration files this
// binary embeds. Run migrate first; serve refuses to start otherwise.
type SchemaGate interface {
	MustBeActive(ctx context.Context) error
}

type schemaGate struct {
	db           *gorm.DB
	wantVersion  string
	wantChecksum string
}

func NewSchemaGate(db *gorm.DB) (SchemaGate, error) {
	version, err := migration.LatestMigrationVersion()
	if err != nil {
		return nil, err
	}
	checksum, err := migration.MigrationsChecksum()
	if err != nil {
		return nil, err
	}
	return &schemaGate{
		db:           db,
		wantVersion:  strconv.FormatUint(uint64(version), 10),
		wantChecksum: checksum,
	}, nil
}

func (g *schemaGate) MustBeActive(ctx context.Context) error {
	state, err := loadSystemBootstrapState(ctx, g.db)
	if err != nil {
		return err
	}

	if state.Status != StatusActive {
		return fmt.Errorf("%w: status=%s", ErrBootstrapStateInactive, state.Status)
	}
	if state.SchemaVersion != g.wantVersion {
		return fmt.Errorf("%w: database=%s binary=%s", ErrSchemaVersionMismatch, state.SchemaVersion, g.wantVersion)
	}

	// Older deployments may predate checksum recording; an empty stored
	// checksum passes, a present one must match exactly.
	if state.Checksum != nil && strings.TrimSpace(*state.Checksum) != "" && *state.Checksum != g.wantChecksum {
		return fmt.Errorf("%w: database=%s binary=%s", ErrSchemaChecksumMismatch, *state.Checksum, g.wantChecksum)
	}
	return nil
}
