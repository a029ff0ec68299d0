package coursemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating course tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS courses (
				id BIGSERIAL PRIMARY KEY,
				owner_player_id BIGINT NOT NULL REFERENCES players(id),
				name TEXT NOT NULL,
				archived_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_courses_owner ON courses(owner_player_id);

			CREATE TABLE IF NOT EXISTS holes (
				id BIGSERIAL PRIMARY KEY,
				course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				number INT NOT NULL,
				par INT NOT NULL,
				distance INT,
				hcp INT,
				UNIQUE (course_id, number)
			);

			CREATE TABLE IF NOT EXISTS course_tees (
				id BIGSERIAL PRIMARY KEY,
				course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				tee_name TEXT NOT NULL,
				course_rating DOUBLE PRECISION,
				slope_rating INT,
				course_rating_men DOUBLE PRECISION,
				slope_rating_men INT,
				course_rating_women DOUBLE PRECISION,
				slope_rating_women INT,
				UNIQUE (course_id, tee_name)
			);

			CREATE TABLE IF NOT EXISTS tee_hole_distances (
				id BIGSERIAL PRIMARY KEY,
				tee_id BIGINT NOT NULL REFERENCES course_tees(id) ON DELETE CASCADE,
				hole_number INT NOT NULL,
				distance INT NOT NULL,
				UNIQUE (tee_id, hole_number)
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create course tables: %w", err)
		}

		fmt.Println("Course tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping course tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS tee_hole_distances CASCADE;
			DROP TABLE IF EXISTS course_tees CASCADE;
			DROP TABLE IF EXISTS holes CASCADE;
			DROP TABLE IF EXISTS courses CASCADE;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop course tables: %w", err)
		}

		fmt.Println("Course tables dropped successfully!")
		return nil
	})
}
