package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament tables...")

		// The round migration created rounds.tournament_id and
		// rounds.tournament_group_id without constraints; the foreign keys
		// land here where the referenced tables exist.
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS tournaments (
				id BIGSERIAL PRIMARY KEY,
				owner_player_id BIGINT NOT NULL REFERENCES players(id),
				course_id BIGINT NOT NULL REFERENCES courses(id),
				name VARCHAR(128) NOT NULL,
				is_public BOOLEAN NOT NULL DEFAULT FALSE,
				paused_at TIMESTAMPTZ,
				pause_message VARCHAR(280),
				completed_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_tournaments_owner ON tournaments(owner_player_id);

			CREATE TABLE IF NOT EXISTS tournament_groups (
				id BIGSERIAL PRIMARY KEY,
				tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				name VARCHAR(128) NOT NULL,
				position INT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_tournament_groups_tournament
				ON tournament_groups(tournament_id);

			CREATE TABLE IF NOT EXISTS tournament_members (
				id BIGSERIAL PRIMARY KEY,
				tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (tournament_id, player_id)
			);

			CREATE TABLE IF NOT EXISTS tournament_invites (
				id BIGSERIAL PRIMARY KEY,
				tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				requester_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				recipient_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (tournament_id, recipient_id)
			);
			CREATE INDEX IF NOT EXISTS idx_tournament_invites_recipient
				ON tournament_invites(recipient_id);

			ALTER TABLE rounds
				ADD CONSTRAINT fk_rounds_tournament
				FOREIGN KEY (tournament_id) REFERENCES tournaments(id)
				ON DELETE SET NULL;
			ALTER TABLE rounds
				ADD CONSTRAINT fk_rounds_tournament_group
				FOREIGN KEY (tournament_group_id) REFERENCES tournament_groups(id)
				ON DELETE SET NULL;
		`)
		if err != nil {
			return fmt.Errorf("failed to create tournament tables: %w", err)
		}

		fmt.Println("Tournament tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament tables...")

		_, err := db.ExecContext(ctx, `
			ALTER TABLE rounds DROP CONSTRAINT IF EXISTS fk_rounds_tournament_group;
			ALTER TABLE rounds DROP CONSTRAINT IF EXISTS fk_rounds_tournament;
			DROP TABLE IF EXISTS tournament_invites CASCADE;
			DROP TABLE IF EXISTS tournament_members CASCADE;
			DROP TABLE IF EXISTS tournament_groups CASCADE;
			DROP TABLE IF EXISTS tournaments CASCADE;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop tournament tables: %w", err)
		}

		fmt.Println("Tournament tables dropped successfully!")
		return nil
	})
}
