package rounddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new round repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts a new round row.
func (r *Impl) Create(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// GetByID retrieves a round by primary key.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get round by id: %w", err)
	}
	return round, nil
}

// ListSummariesForPlayer returns list-view projections of every round the
// player owns or participates in, newest first.
func (r *Impl) ListSummariesForPlayer(ctx context.Context, db bun.IDB, playerID int64) ([]RoundSummary, error) {
	db = r.resolveDB(db)
	var summaries []RoundSummary
	err := db.NewRaw(`
		SELECT r.id,
		       r.course_id,
		       c.name AS course_name,
		       r.owner_player_id,
		       r.tournament_id,
		       r.started_at,
		       r.completed_at,
		       (SELECT count(*) FROM round_participants rp WHERE rp.round_id = r.id) AS participants_count,
		       (SELECT count(*) FROM holes h WHERE h.course_id = r.course_id) AS holes_count,
		       (SELECT coalesce(sum(h.par), 0) FROM holes h WHERE h.course_id = r.course_id) AS total_par
		FROM rounds r
		JOIN courses c ON c.id = r.course_id
		WHERE r.owner_player_id = ?
		   OR EXISTS (SELECT 1 FROM round_participants rp WHERE rp.round_id = r.id AND rp.player_id = ?)
		ORDER BY r.started_at DESC, r.id DESC
	`, playerID, playerID).Scan(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return summaries, nil
}

// GetParticipants returns the round's participants with player labels, in
// insertion order.
func (r *Impl) GetParticipants(ctx context.Context, db bun.IDB, roundID int64) ([]ParticipantInfo, error) {
	db = r.resolveDB(db)
	var participants []ParticipantInfo
	err := db.NewRaw(`
		SELECT rp.id,
		       rp.round_id,
		       rp.kind,
		       rp.player_id,
		       rp.guest_key,
		       rp.guest_name,
		       rp.guest_handicap,
		       p.external_id,
		       p.username,
		       p.email,
		       p.name AS player_name,
		       p.handicap
		FROM round_participants rp
		LEFT JOIN players p ON p.id = rp.player_id
		WHERE rp.round_id = ?
		ORDER BY rp.id ASC
	`, roundID).Scan(ctx, &participants)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return participants, nil
}

// AddParticipants bulk-inserts participant rows.
func (r *Impl) AddParticipants(ctx context.Context, db bun.IDB, participants []RoundParticipant) error {
	db = r.resolveDB(db)
	if len(participants) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&participants).Exec(ctx); err != nil {
		return fmt.Errorf("failed to add participants: %w", err)
	}
	return nil
}

// GetCells returns every score cell of the round.
func (r *Impl) GetCells(ctx context.Context, db bun.IDB, roundID int64) ([]ScoreCell, error) {
	db = r.resolveDB(db)
	var cells []ScoreCell
	err := db.NewSelect().
		Model(&cells).
		Where("sc.round_id = ?", roundID).
		Order("sc.hole_number ASC", "sc.participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get score cells: %w", err)
	}
	return cells, nil
}

// UpsertCell inserts a score cell or overwrites the existing one for the same
// (round, participant, hole).
func (r *Impl) UpsertCell(ctx context.Context, db bun.IDB, cell *ScoreCell) error {
	db = r.resolveDB(db)
	cell.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(cell).
		On("CONFLICT (round_id, participant_id, hole_number) DO UPDATE").
		Set("strokes = EXCLUDED.strokes").
		Set("putts = EXCLUDED.putts").
		Set("fairway = EXCLUDED.fairway").
		Set("gir = EXCLUDED.gir").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert score cell: %w", err)
	}
	return nil
}

// InsertCells bulk-inserts score cells for a freshly created round.
func (r *Impl) InsertCells(ctx context.Context, db bun.IDB, cells []ScoreCell) error {
	db = r.resolveDB(db)
	if len(cells) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&cells).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert score cells: %w", err)
	}
	return nil
}

// CountCells counts the round's score cells.
func (r *Impl) CountCells(ctx context.Context, db bun.IDB, roundID int64) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*ScoreCell)(nil)).
		Where("sc.round_id = ?", roundID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count score cells: %w", err)
	}
	return count, nil
}

// SetCompleted stamps the round completed.
func (r *Impl) SetCompleted(ctx context.Context, db bun.IDB, roundID int64, completedAt time.Time) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Round)(nil)).
		Set("completed_at = ?", completedAt).
		Set("updated_at = ?", completedAt).
		Where("id = ?", roundID).
		Where("completed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete round: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// HasActiveRound reports whether the owner already has an uncompleted round.
func (r *Impl) HasActiveRound(ctx context.Context, db bun.IDB, ownerID int64) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Round)(nil)).
		Where("r.owner_player_id = ?", ownerID).
		Where("r.completed_at IS NULL").
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check active round: %w", err)
	}
	return exists, nil
}

// Delete removes the round; participants and cells cascade.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, roundID int64) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("r.id = ?", roundID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIfAbandoned removes the round only if it is still uncompleted and has
// no score cells. Reports whether a row was deleted.
func (r *Impl) DeleteIfAbandoned(ctx context.Context, db bun.IDB, roundID int64) (bool, error) {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("r.id = ?", roundID).
		Where("r.completed_at IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM score_cells sc WHERE sc.round_id = r.id)").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete abandoned round: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListAbandoned returns ids of uncompleted, scoreless rounds started before
// cutoff.
func (r *Impl) ListAbandoned(ctx context.Context, db bun.IDB, cutoff time.Time) ([]int64, error) {
	db = r.resolveDB(db)
	var ids []int64
	err := db.NewSelect().
		Model((*Round)(nil)).
		Column("r.id").
		Where("r.completed_at IS NULL").
		Where("r.started_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM score_cells sc WHERE sc.round_id = r.id)").
		Order("r.id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list abandoned rounds: %w", err)
	}
	return ids, nil
}

// GetTournamentLockState reads the pause/finish markers of a tournament.
func (r *Impl) GetTournamentLockState(ctx context.Context, db bun.IDB, tournamentID int64) (*TournamentLockState, error) {
	db = r.resolveDB(db)
	state := new(TournamentLockState)
	err := db.NewRaw(`
		SELECT t.paused_at, t.completed_at
		FROM tournaments t
		WHERE t.id = ?
	`, tournamentID).Scan(ctx, state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament lock state: %w", err)
	}
	return state, nil
}
