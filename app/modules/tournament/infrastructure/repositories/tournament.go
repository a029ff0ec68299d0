package tournamentdb

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

// NewRepository creates a new tournament repository.
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

// Create inserts the tournament row only; groups are inserted separately
// within the same transaction.
func (r *Impl) Create(ctx context.Context, db bun.IDB, tournament *Tournament) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(tournament).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

// GetByID retrieves the bare tournament row.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Tournament, error) {
	db = r.resolveDB(db)
	tournament := new(Tournament)
	err := db.NewSelect().
		Model(tournament).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament by id: %w", err)
	}
	return tournament, nil
}

// Update persists name and lifecycle marker changes.
func (r *Impl) Update(ctx context.Context, db bun.IDB, tournament *Tournament) error {
	db = r.resolveDB(db)
	tournament.UpdatedAt = time.Now()
	result, err := db.NewUpdate().
		Model(tournament).
		Column("name", "paused_at", "pause_message", "completed_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
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

// Delete removes the tournament; groups, members, and invites cascade.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, id int64) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Tournament)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
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

// ListVisible returns tournaments the player owns, belongs to, plays in, or
// that are public, newest first.
func (r *Impl) ListVisible(ctx context.Context, db bun.IDB, playerID int64) ([]TournamentSummary, error) {
	db = r.resolveDB(db)
	summaries := make([]TournamentSummary, 0)
	err := db.NewRaw(`
		SELECT t.id, t.name, t.course_id, c.name AS course_name,
		       t.owner_player_id, t.is_public, t.paused_at, t.completed_at,
		       t.created_at,
		       (SELECT COUNT(*) FROM tournament_groups tg
		        WHERE tg.tournament_id = t.id) AS groups_count
		FROM tournaments t
		JOIN courses c ON c.id = t.course_id
		WHERE t.owner_player_id = ?
		   OR t.is_public
		   OR EXISTS (
		        SELECT 1 FROM tournament_members tm
		        WHERE tm.tournament_id = t.id AND tm.player_id = ?
		   )
		   OR EXISTS (
		        SELECT 1 FROM rounds r
		        LEFT JOIN round_participants rp ON rp.round_id = r.id
		        WHERE r.tournament_id = t.id
		          AND (r.owner_player_id = ? OR rp.player_id = ?)
		   )
		ORDER BY t.created_at DESC, t.id DESC
	`, playerID, playerID, playerID, playerID).Scan(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return summaries, nil
}

// AddGroups inserts group rows.
func (r *Impl) AddGroups(ctx context.Context, db bun.IDB, groups []TournamentGroup) error {
	if len(groups) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(&groups).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert tournament groups: %w", err)
	}
	return nil
}

// ListGroups returns the tournament's groups in position order.
func (r *Impl) ListGroups(ctx context.Context, db bun.IDB, tournamentID int64) ([]TournamentGroup, error) {
	db = r.resolveDB(db)
	var groups []TournamentGroup
	err := db.NewSelect().
		Model(&groups).
		Where("tg.tournament_id = ?", tournamentID).
		Order("tg.position ASC").
		Order("tg.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament groups: %w", err)
	}
	return groups, nil
}

// AddMember records membership, ignoring duplicates.
func (r *Impl) AddMember(ctx context.Context, db bun.IDB, tournamentID, playerID int64) error {
	db = r.resolveDB(db)
	member := &TournamentMember{TournamentID: tournamentID, PlayerID: playerID}
	_, err := db.NewInsert().
		Model(member).
		On("CONFLICT (tournament_id, player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add tournament member: %w", err)
	}
	return nil
}

// IsMember reports whether the player belongs to the tournament.
func (r *Impl) IsMember(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (bool, error) {
	db = r.resolveDB(db)
	var exists bool
	err := db.NewRaw(`
		SELECT EXISTS (
			SELECT 1 FROM tournament_members
			WHERE tournament_id = ? AND player_id = ?
		)
	`, tournamentID, playerID).Scan(ctx, &exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tournament membership: %w", err)
	}
	return exists, nil
}

// CreateInvite inserts a pending invite.
func (r *Impl) CreateInvite(ctx context.Context, db bun.IDB, invite *TournamentInvite) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(invite).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tournament invite: %w", err)
	}
	return nil
}

// GetInvite retrieves one invite row.
func (r *Impl) GetInvite(ctx context.Context, db bun.IDB, id int64) (*TournamentInvite, error) {
	db = r.resolveDB(db)
	invite := new(TournamentInvite)
	err := db.NewSelect().
		Model(invite).
		Where("ti.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament invite: %w", err)
	}
	return invite, nil
}

// DeleteInvite removes an invite row.
func (r *Impl) DeleteInvite(ctx context.Context, db bun.IDB, id int64) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*TournamentInvite)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tournament invite: %w", err)
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

// HasPendingInvite reports whether the player already holds an invite to the
// tournament.
func (r *Impl) HasPendingInvite(ctx context.Context, db bun.IDB, tournamentID, recipientID int64) (bool, error) {
	db = r.resolveDB(db)
	var exists bool
	err := db.NewRaw(`
		SELECT EXISTS (
			SELECT 1 FROM tournament_invites
			WHERE tournament_id = ? AND recipient_id = ?
		)
	`, tournamentID, recipientID).Scan(ctx, &exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tournament invite: %w", err)
	}
	return exists, nil
}

// ListInvitesForRecipient returns the player's pending invites, newest first.
func (r *Impl) ListInvitesForRecipient(ctx context.Context, db bun.IDB, playerID int64) ([]InviteInfo, error) {
	db = r.resolveDB(db)
	invites := make([]InviteInfo, 0)
	err := db.NewRaw(`
		SELECT ti.id, ti.tournament_id, t.name AS tournament_name,
		       ti.requester_id,
		       COALESCE(p.name, p.username, p.email, p.external_id) AS requester_label,
		       ti.created_at
		FROM tournament_invites ti
		JOIN tournaments t ON t.id = ti.tournament_id
		JOIN players p ON p.id = ti.requester_id
		WHERE ti.recipient_id = ?
		ORDER BY ti.created_at DESC, ti.id DESC
	`, playerID).Scan(ctx, &invites)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament invites: %w", err)
	}
	return invites, nil
}

// ListGroupRounds returns the rounds bound to the tournament.
func (r *Impl) ListGroupRounds(ctx context.Context, db bun.IDB, tournamentID int64) ([]GroupRound, error) {
	db = r.resolveDB(db)
	rounds := make([]GroupRound, 0)
	err := db.NewRaw(`
		SELECT r.id AS round_id, r.tournament_group_id AS group_id,
		       r.owner_player_id, r.started_at, r.completed_at,
		       (SELECT COUNT(*) FROM round_participants rp
		        WHERE rp.round_id = r.id) AS participants_count
		FROM rounds r
		WHERE r.tournament_id = ?
		ORDER BY r.started_at ASC, r.id ASC
	`, tournamentID).Scan(ctx, &rounds)
	if err != nil {
		return nil, fmt.Errorf("failed to list group rounds: %w", err)
	}
	return rounds, nil
}

// ListParticipants returns every participant of the tournament's rounds with
// player columns joined in.
func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, tournamentID int64) ([]ParticipantRow, error) {
	db = r.resolveDB(db)
	participants := make([]ParticipantRow, 0)
	err := db.NewRaw(`
		SELECT rp.id, rp.round_id, r.tournament_group_id AS group_id,
		       rp.kind, rp.player_id, rp.guest_key, rp.guest_name,
		       p.external_id, p.username, p.email, p.name AS player_name
		FROM round_participants rp
		JOIN rounds r ON r.id = rp.round_id
		LEFT JOIN players p ON p.id = rp.player_id
		WHERE r.tournament_id = ?
		ORDER BY rp.id ASC
	`, tournamentID).Scan(ctx, &participants)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament participants: %w", err)
	}
	return participants, nil
}

// ListScores returns every recorded cell of the tournament's rounds.
func (r *Impl) ListScores(ctx context.Context, db bun.IDB, tournamentID int64) ([]ScoreRow, error) {
	db = r.resolveDB(db)
	scores := make([]ScoreRow, 0)
	err := db.NewRaw(`
		SELECT sc.participant_id, sc.hole_number, sc.strokes
		FROM score_cells sc
		JOIN rounds r ON r.id = sc.round_id
		WHERE r.tournament_id = ?
		ORDER BY sc.participant_id ASC, sc.hole_number ASC
	`, tournamentID).Scan(ctx, &scores)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament scores: %w", err)
	}
	return scores, nil
}

// FindPlayerRound returns the id of the tournament round the player owns or
// plays in, or nil when there is none.
func (r *Impl) FindPlayerRound(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*int64, error) {
	db = r.resolveDB(db)
	var roundID int64
	err := db.NewRaw(`
		SELECT r.id
		FROM rounds r
		WHERE r.tournament_id = ?
		  AND (r.owner_player_id = ?
		       OR EXISTS (
		            SELECT 1 FROM round_participants rp
		            WHERE rp.round_id = r.id AND rp.player_id = ?
		       ))
		ORDER BY r.id ASC
		LIMIT 1
	`, tournamentID, playerID, playerID).Scan(ctx, &roundID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find player round: %w", err)
	}
	return &roundID, nil
}

// HasOpenRounds reports whether any bound round is still uncompleted.
func (r *Impl) HasOpenRounds(ctx context.Context, db bun.IDB, tournamentID int64) (bool, error) {
	db = r.resolveDB(db)
	var exists bool
	err := db.NewRaw(`
		SELECT EXISTS (
			SELECT 1 FROM rounds
			WHERE tournament_id = ? AND completed_at IS NULL
		)
	`, tournamentID).Scan(ctx, &exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tournament rounds: %w", err)
	}
	return exists, nil
}

// DetachRounds clears the tournament binding of every bound round, leaving
// the rounds standing.
func (r *Impl) DetachRounds(ctx context.Context, db bun.IDB, tournamentID int64) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Table("rounds").
		Set("tournament_id = NULL").
		Set("tournament_group_id = NULL").
		Set("updated_at = ?", time.Now()).
		Where("tournament_id = ?", tournamentID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to detach tournament rounds: %w", err)
	}
	return nil
}
