package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequiredSchemaVersion is the schema this build reads and writes.
const RequiredSchemaVersion = 1

// ErrSchemaOutdated is returned when the database predates RequiredSchemaVersion.
var ErrSchemaOutdated = errors.New("persistence: database schema is outdated")

// VerifySchema checks once at start-up that the database carries the
// required schema version and the granted-roles table.
func VerifySchema(ctx context.Context, pool *pgxpool.Pool, required int) error {
	if pool == nil {
		return nil
	}

	var present bool
	if err := pool.QueryRow(ctx, `SELECT to_regclass('public.schema_version') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("inspect schema_version: %w", err)
	}
	if !present {
		return fmt.Errorf("%w: schema_version table missing", ErrSchemaOutdated)
	}

	var version int
	if err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version < required {
		return fmt.Errorf("%w: have %d, need %d", ErrSchemaOutdated, version, required)
	}

	if err := pool.QueryRow(ctx, `SELECT to_regclass('public.user_roles') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("inspect user_roles: %w", err)
	}
	if !present {
		return fmt.Errorf("%w: user_roles table missing", ErrSchemaOutdated)
	}
	return nil
}
