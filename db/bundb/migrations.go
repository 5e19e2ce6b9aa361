package bundb

import (
	"context"
	"fmt"

	ledgermigrations "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories/migrations"
	questionbankmigrations "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories/migrations"
	rewardmigrations "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories/migrations"
	tournamentmigrations "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrator pairs a module name with its migrator.
type ModuleMigrator struct {
	Module   string
	Migrator *migrate.Migrator
}

// Migrators returns one migrator per module, ledger first. Each module tracks its applied
// migrations in its own table so groups roll back independently.
func Migrators(db *bun.DB) []ModuleMigrator {
	modules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"ledger", ledgermigrations.Migrations},
		{"questionbank", questionbankmigrations.Migrations},
		{"tournament", tournamentmigrations.Migrations},
		{"reward", rewardmigrations.Migrations},
	}

	out := make([]ModuleMigrator, 0, len(modules))
	for _, m := range modules {
		out = append(out, ModuleMigrator{
			Module: m.name,
			Migrator: migrate.NewMigrator(db, m.migrations,
				migrate.WithTableName("bun_migrations_"+m.name),
				migrate.WithLocksTableName("bun_migration_locks_"+m.name),
			),
		})
	}
	return out
}

// MigrateAll initializes and applies every module's migrations.
func MigrateAll(ctx context.Context, db *bun.DB) error {
	for _, m := range Migrators(db) {
		if err := m.Migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", m.Module, err)
		}
		if _, err := m.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", m.Module, err)
		}
	}
	return nil
}
