package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS tournament_manager_state (
					address UUID PRIMARY KEY,
					authority TEXT NOT NULL,
					tournament_count BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create tournament_manager_state table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS tournaments (
					id BIGINT PRIMARY KEY,
					address UUID NOT NULL UNIQUE,
					organizer TEXT NOT NULL,
					name VARCHAR(64) NOT NULL,
					description VARCHAR(400) NOT NULL DEFAULT '',
					entry_fee BIGINT NOT NULL CHECK (entry_fee >= 0),
					prize_pool BIGINT NOT NULL DEFAULT 0 CHECK (prize_pool >= 0),
					asset TEXT NOT NULL,
					vault TEXT NOT NULL UNIQUE,
					max_participants INTEGER NOT NULL CHECK (max_participants > 0),
					registered_count INTEGER NOT NULL DEFAULT 0,
					submitted_count INTEGER NOT NULL DEFAULT 0,
					start_time TIMESTAMPTZ NOT NULL,
					duration_seconds BIGINT NOT NULL CHECK (duration_seconds > 0),
					actual_start TIMESTAMPTZ,
					ended_at TIMESTAMPTZ,
					question_count SMALLINT NOT NULL CHECK (question_count BETWEEN 1 AND 50),
					category VARCHAR(32) NOT NULL DEFAULT '',
					difficulty SMALLINT CHECK (difficulty BETWEEN 1 AND 3),
					status TEXT NOT NULL CHECK (status IN ('registration', 'active', 'completed', 'cancelled')),
					prize_released BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (registered_count <= max_participants),
					CHECK (submitted_count <= registered_count)
				);
				CREATE INDEX IF NOT EXISTS idx_tournaments_status ON tournaments(status);
			`); err != nil {
				return fmt.Errorf("failed to create tournaments table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS tournament_registrations (
					address UUID PRIMARY KEY,
					tournament_id BIGINT NOT NULL REFERENCES tournaments(id),
					participant TEXT NOT NULL,
					paid_fee BIGINT NOT NULL,
					seq BIGINT NOT NULL,
					score INTEGER NOT NULL DEFAULT 0,
					score_submitted BOOLEAN NOT NULL DEFAULT FALSE,
					final_rank INTEGER,
					refunded BOOLEAN NOT NULL DEFAULT FALSE,
					registered_at TIMESTAMPTZ NOT NULL,
					submitted_at TIMESTAMPTZ,
					UNIQUE (tournament_id, participant),
					UNIQUE (tournament_id, seq)
				);
			`); err != nil {
				return fmt.Errorf("failed to create tournament_registrations table: %w", err)
			}

			fmt.Println("Tournament tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS tournament_registrations;
			DROP TABLE IF EXISTS tournaments;
			DROP TABLE IF EXISTS tournament_manager_state;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop tournament tables: %w", err)
		}
		fmt.Println("Tournament tables dropped successfully!")
		return nil
	})
}
