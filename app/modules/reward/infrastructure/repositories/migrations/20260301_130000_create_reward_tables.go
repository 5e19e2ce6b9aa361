package rewardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating reward tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS reward_distributor_state (
					address UUID PRIMARY KEY,
					authority TEXT NOT NULL,
					treasury TEXT NOT NULL,
					pool_count BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create reward_distributor_state table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS reward_pools (
					id BIGINT PRIMARY KEY,
					address UUID NOT NULL UNIQUE,
					authority TEXT NOT NULL,
					name VARCHAR(50) NOT NULL,
					target BIGINT NOT NULL CHECK (target > 0),
					kind TEXT NOT NULL CHECK (kind IN ('native', 'token')),
					token_id TEXT,
					asset TEXT NOT NULL,
					vault TEXT NOT NULL UNIQUE,
					criteria TEXT NOT NULL,
					platform_fee_bps SMALLINT NOT NULL CHECK (platform_fee_bps BETWEEN 0 AND 10000),
					start_time TIMESTAMPTZ NOT NULL,
					end_time TIMESTAMPTZ NOT NULL,
					funded BIGINT NOT NULL DEFAULT 0,
					distributed_balance BIGINT NOT NULL DEFAULT 0,
					returned_balance BIGINT NOT NULL DEFAULT 0,
					platform_fee BIGINT NOT NULL DEFAULT 0,
					entitled BIGINT NOT NULL DEFAULT 0,
					active BOOLEAN NOT NULL DEFAULT TRUE,
					distributed_at TIMESTAMPTZ,
					closed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (start_time < end_time),
					CHECK (funded <= target),
					CHECK (distributed_balance + returned_balance <= funded)
				);
			`); err != nil {
				return fmt.Errorf("failed to create reward_pools table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS reward_distributions (
					pool_id BIGINT PRIMARY KEY REFERENCES reward_pools(id),
					address UUID NOT NULL UNIQUE,
					tiers JSONB NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create reward_distributions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS reward_claims (
					address UUID PRIMARY KEY,
					pool_id BIGINT NOT NULL REFERENCES reward_pools(id),
					claimant TEXT NOT NULL,
					rank INTEGER NOT NULL,
					amount BIGINT NOT NULL CHECK (amount > 0),
					claimed BOOLEAN NOT NULL DEFAULT FALSE,
					claimed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (pool_id, claimant)
				);
				CREATE INDEX IF NOT EXISTS idx_reward_claims_pool ON reward_claims(pool_id, rank);
			`); err != nil {
				return fmt.Errorf("failed to create reward_claims table: %w", err)
			}

			fmt.Println("Reward tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping reward tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS reward_claims;
			DROP TABLE IF EXISTS reward_distributions;
			DROP TABLE IF EXISTS reward_pools;
			DROP TABLE IF EXISTS reward_distributor_state;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop reward tables: %w", err)
		}
		fmt.Println("Reward tables dropped successfully!")
		return nil
	})
}
