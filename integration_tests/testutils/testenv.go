// Package testutils starts the containers the integration tests run against.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/trivia-ledger/app/eventbus"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/db/bundb"
	"github.com/Black-And-White-Club/trivia-ledger/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Tables lists every program table, truncated between tests.
var Tables = []string{
	"ledger_balances",
	"ledger_transfers",
	"question_bank_state",
	"questions",
	"question_votes",
	"user_reputations",
	"tournament_manager_state",
	"tournaments",
	"tournament_registrations",
	"reward_distributor_state",
	"reward_pools",
	"reward_distributions",
	"reward_claims",
}

// TestEnvironment holds the containers and connections shared by a test package.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

// SkipIfShort skips integration tests under -short.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// NewTestEnvironment starts Postgres, applies every module's migrations and, when withNATS is
// set, starts NATS and connects an event bus.
func NewTestEnvironment(withNATS bool) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.Config = &config.Config{Postgres: config.PostgresConfig{DSN: pgConnStr}}

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bundb.BunDB(sqlDB)

	if err := bundb.MigrateAll(ctx, env.DB); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if withNATS {
		natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
		if err != nil {
			env.Cleanup()
			return nil, fmt.Errorf("failed to setup nats container: %w", err)
		}
		env.NatsContainer = natsContainer
		env.Config.NATS = config.NATSConfig{URL: natsURL, QueueGroup: "trivia-ledger-test", Stream: "TRIVIA_TEST"}

		bus, err := eventbus.NewEventBus(ctx, natsURL, env.Config.NATS.QueueGroup, env.Logger)
		if err != nil {
			env.Cleanup()
			return nil, fmt.Errorf("failed to create event bus: %w", err)
		}
		env.EventBus = bus
	}

	return env, nil
}

// Reset truncates every program table.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := env.DB.NewTruncateTable().TableExpr(table).Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(context.Background())
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(context.Background())
	}
	env.CancelContext()
}
