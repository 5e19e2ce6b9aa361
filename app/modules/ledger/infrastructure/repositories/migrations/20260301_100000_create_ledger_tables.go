package ledgermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ledger_balances and ledger_transfers tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ledger_balances (
					holder TEXT NOT NULL,
					asset TEXT NOT NULL,
					amount BIGINT NOT NULL DEFAULT 0 CHECK (amount >= 0),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (holder, asset)
				);
			`); err != nil {
				return fmt.Errorf("failed to create ledger_balances table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ledger_transfers (
					id BIGSERIAL PRIMARY KEY,
					from_holder TEXT NOT NULL,
					to_holder TEXT NOT NULL,
					asset TEXT NOT NULL,
					amount BIGINT NOT NULL CHECK (amount > 0),
					memo TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_ledger_transfers_from ON ledger_transfers(from_holder);
				CREATE INDEX IF NOT EXISTS idx_ledger_transfers_to ON ledger_transfers(to_holder);
			`); err != nil {
				return fmt.Errorf("failed to create ledger_transfers table: %w", err)
			}

			fmt.Println("Ledger tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ledger tables...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS ledger_transfers; DROP TABLE IF EXISTS ledger_balances;`); err != nil {
			return fmt.Errorf("failed to drop ledger tables: %w", err)
		}
		fmt.Println("Ledger tables dropped successfully!")
		return nil
	})
}
