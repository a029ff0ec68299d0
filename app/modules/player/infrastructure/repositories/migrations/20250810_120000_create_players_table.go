package playermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating players table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS players (
				id BIGSERIAL PRIMARY KEY,
				external_id TEXT NOT NULL UNIQUE,
				username TEXT UNIQUE,
				email TEXT UNIQUE,
				name TEXT,
				handicap DOUBLE PRECISION,
				gender TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_players_external_id ON players(external_id);
			CREATE INDEX IF NOT EXISTS idx_players_username ON players(username);
		`)
		if err != nil {
			return fmt.Errorf("failed to create players table: %w", err)
		}

		fmt.Println("Players table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping players table...")

		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS players CASCADE;`)
		if err != nil {
			return fmt.Errorf("failed to drop players table: %w", err)
		}

		fmt.Println("Players table dropped successfully!")
		return nil
	})
}
