package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Cluster-wide lock key for the migration run. Arbitrary but stable; two
// migrator processes against the same database serialize on it.
const advisoryLockKey int64 = 5_117_204_388

type unlockFunc func(ctx context.Context) error

func acquireAdvisoryLock(ctx context.Context, db *sql.DB) (unlockFunc, error) {
	var locked bool
	if err := db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another migration is in progress")
	}

	unlock := func(ctx context.Context) error {
		var released bool
		if err := db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockKey).Scan(&released); err != nil {
			return fmt.Errorf("release migration lock: %w", err)
		}
		if !released {
			return errors.New("migration lock was not held by this session")
		}
		return nil
	}
	return unlock, nil
}
