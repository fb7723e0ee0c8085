package database

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

/* ========================================================================
 * Migrations
 * ========================================================================
 * Embedded, ordered SQL migrations. Applied statements are tracked in
 * schema_migrations so re-running is idempotent. The DDL carries the
 * compound (owner, ...) unique and foreign-key constraints that the
 * repository layer enforces at the application level.
 * ======================================================================== */

const migrationTable = "schema_migrations"

// Migrate applies pending migrations in filename order.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if err := db.WithContext(ctx).Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (version TEXT PRIMARY KEY, applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
		migrationTable,
	)).Error; err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		raw, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(raw)).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			return tx.Exec(
				fmt.Sprintf("INSERT INTO %s (version) VALUES (?)", migrationTable), name,
			).Error
		})
		if err != nil {
			return err
		}

		if log != nil {
			log.Info("applied migration", zap.String("version", name))
		}
	}

	return nil
}

func isApplied(ctx context.Context, db *gorm.DB, version string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Table(migrationTable).
		Where("version = ?", version).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return count > 0, nil
}
