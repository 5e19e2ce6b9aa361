package questionbankmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating question bank tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS question_bank_state (
					address UUID PRIMARY KEY,
					authority TEXT NOT NULL,
					curators TEXT[] NOT NULL DEFAULT '{}',
					total_questions BIGINT NOT NULL DEFAULT 0,
					approved_questions BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create question_bank_state table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS questions (
					id BIGINT PRIMARY KEY,
					address UUID NOT NULL UNIQUE,
					text VARCHAR(400) NOT NULL,
					options TEXT[] NOT NULL CHECK (cardinality(options) BETWEEN 2 AND 4),
					correct_index SMALLINT NOT NULL,
					category VARCHAR(32) NOT NULL,
					difficulty SMALLINT NOT NULL CHECK (difficulty BETWEEN 1 AND 3),
					approvals INTEGER NOT NULL DEFAULT 0,
					rejections INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
					submitter TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					finalized_at TIMESTAMPTZ,
					CHECK (correct_index < cardinality(options))
				);
				CREATE INDEX IF NOT EXISTS idx_questions_approved
					ON questions(category, difficulty) WHERE status = 'approved';
			`); err != nil {
				return fmt.Errorf("failed to create questions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS question_votes (
					address UUID PRIMARY KEY,
					question_id BIGINT NOT NULL REFERENCES questions(id),
					voter TEXT NOT NULL,
					approve BOOLEAN NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (question_id, voter)
				);
			`); err != nil {
				return fmt.Errorf("failed to create question_votes table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS user_reputations (
					owner TEXT PRIMARY KEY,
					address UUID NOT NULL UNIQUE,
					score BIGINT NOT NULL DEFAULT 0 CHECK (score >= 0),
					correct_votes INTEGER NOT NULL DEFAULT 0,
					incorrect_votes INTEGER NOT NULL DEFAULT 0,
					questions_submitted INTEGER NOT NULL DEFAULT 0,
					questions_approved INTEGER NOT NULL DEFAULT 0,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create user_reputations table: %w", err)
			}

			fmt.Println("Question bank tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping question bank tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS question_votes;
			DROP TABLE IF EXISTS questions;
			DROP TABLE IF EXISTS user_reputations;
			DROP TABLE IF EXISTS question_bank_state;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop question bank tables: %w", err)
		}
		fmt.Println("Question bank tables dropped successfully!")
		return nil
	})
}
