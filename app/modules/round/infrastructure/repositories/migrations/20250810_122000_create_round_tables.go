package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating round tables...")

		// tournament_id and tournament_group_id get their foreign keys in the
		// tournament migration, which creates the referenced tables.
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS rounds (
				id BIGSERIAL PRIMARY KEY,
				owner_player_id BIGINT NOT NULL REFERENCES players(id),
				course_id BIGINT NOT NULL REFERENCES courses(id),
				tee_id BIGINT REFERENCES course_tees(id),
				tournament_id BIGINT,
				tournament_group_id BIGINT,
				stats_enabled BOOLEAN NOT NULL DEFAULT FALSE,
				started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				completed_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_rounds_owner ON rounds(owner_player_id);
			CREATE INDEX IF NOT EXISTS idx_rounds_course ON rounds(course_id);
			CREATE UNIQUE INDEX IF NOT EXISTS uq_rounds_owner_active
				ON rounds(owner_player_id) WHERE completed_at IS NULL;
			CREATE UNIQUE INDEX IF NOT EXISTS uq_rounds_tournament_group
				ON rounds(tournament_group_id) WHERE tournament_group_id IS NOT NULL;

			CREATE TABLE IF NOT EXISTS round_participants (
				id BIGSERIAL PRIMARY KEY,
				round_id BIGINT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				player_id BIGINT REFERENCES players(id),
				guest_key TEXT,
				guest_name TEXT,
				guest_handicap DOUBLE PRECISION,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (round_id, player_id),
				UNIQUE (round_id, guest_key)
			);

			CREATE TABLE IF NOT EXISTS score_cells (
				id BIGSERIAL PRIMARY KEY,
				round_id BIGINT NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
				participant_id BIGINT NOT NULL REFERENCES round_participants(id) ON DELETE CASCADE,
				hole_number INT NOT NULL,
				strokes INT NOT NULL,
				putts INT,
				fairway TEXT,
				gir TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (round_id, participant_id, hole_number)
			);
			CREATE INDEX IF NOT EXISTS idx_score_cells_participant ON score_cells(participant_id);
		`)
		if err != nil {
			return fmt.Errorf("failed to create round tables: %w", err)
		}

		fmt.Println("Round tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping round tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS score_cells CASCADE;
			DROP TABLE IF EXISTS round_participants CASCADE;
			DROP TABLE IF EXISTS rounds CASCADE;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop round tables: %w", err)
		}

		fmt.Println("Round tables dropped successfully!")
		return nil
	})
}
