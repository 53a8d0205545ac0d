package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir = "pkg/migrate/migrations"

	// goose files are written for Postgres; SQLite databases use AutoMigrateModels.
	gooseDialect = "postgres"
)

func useDialect() error {
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Run executes a goose command that requires a DB connection (up, down, status, ...).
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if err := useDialect(); err != nil {
		return err
	}

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// ParseVersion validates a YYYYMMDDHHMMSS migration version.
func ParseVersion(raw string) (int64, error) {
	if len(raw) != 14 {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", raw, err)
	}
	return v, nil
}

// MigrateToVersion moves the schema up or down until it reaches targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := ParseVersion(targetVersion)
	if err != nil {
		return err
	}
	if err := useDialect(); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
