package socialmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating social tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS friends (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				friend_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (player_id, friend_id),
				CHECK (player_id <> friend_id)
			);

			CREATE TABLE IF NOT EXISTS friend_requests (
				id BIGSERIAL PRIMARY KEY,
				requester_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				recipient_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (requester_id, recipient_id),
				CHECK (requester_id <> recipient_id)
			);
			CREATE INDEX IF NOT EXISTS idx_friend_requests_recipient
				ON friend_requests(recipient_id);

			CREATE TABLE IF NOT EXISTS activity_events (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				round_id BIGINT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
				hole_number INT NOT NULL,
				strokes INT NOT NULL,
				par INT NOT NULL,
				kind TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (round_id, player_id, hole_number, kind)
			);
			CREATE INDEX IF NOT EXISTS idx_activity_events_player
				ON activity_events(player_id, created_at DESC);
		`)
		if err != nil {
			return fmt.Errorf("failed to create social tables: %w", err)
		}

		fmt.Println("Social tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping social tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS activity_events CASCADE;
			DROP TABLE IF EXISTS friend_requests CASCADE;
			DROP TABLE IF EXISTS friends CASCADE;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop social tables: %w", err)
		}

		fmt.Println("Social tables dropped successfully!")
		return nil
	})
}
