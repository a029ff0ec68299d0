package playerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new player repository.
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

// GetByID retrieves a player by primary key.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Player, error) {
	db = r.resolveDB(db)
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}
	return player, nil
}

// GetByExternalID retrieves a player by identity subject.
func (r *Impl) GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*Player, error) {
	db = r.resolveDB(db)
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Where("p.external_id = ?", externalID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player by external id: %w", err)
	}
	return player, nil
}

// GetByRef resolves a player reference: external id first, then email,
// then username.
func (r *Impl) GetByRef(ctx context.Context, db bun.IDB, ref string) (*Player, error) {
	db = r.resolveDB(db)
	player := new(Player)
	err := db.NewSelect().
		Model(player).
		Where("p.external_id = ?", ref).
		Scan(ctx)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve player ref: %w", err)
	}

	player = new(Player)
	q := db.NewSelect().Model(player)
	if strings.Contains(ref, "@") {
		q = q.Where("lower(p.email) = lower(?)", ref)
	} else {
		q = q.Where("lower(p.username) = lower(?)", ref)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve player ref: %w", err)
	}
	return player, nil
}

// Create inserts a new player row.
func (r *Impl) Create(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(player).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// Update persists profile field changes.
func (r *Impl) Update(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)
	player.UpdatedAt = time.Now()
	result, err := db.NewUpdate().
		Model(player).
		Column("username", "email", "name", "handicap", "gender", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
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

// ExistsWithUsername reports whether another player already claimed username.
func (r *Impl) ExistsWithUsername(ctx context.Context, db bun.IDB, username string, excludeID int64) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Player)(nil)).
		Where("lower(p.username) = lower(?)", username).
		Where("p.id != ?", excludeID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// ExistsWithEmail reports whether another player already claimed email.
func (r *Impl) ExistsWithEmail(ctx context.Context, db bun.IDB, email string, excludeID int64) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Player)(nil)).
		Where("lower(p.email) = lower(?)", email).
		Where("p.id != ?", excludeID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Search finds players whose username, name, or email starts with query.
func (r *Impl) Search(ctx context.Context, db bun.IDB, query string, excludeID int64, limit int) ([]Player, error) {
	db = r.resolveDB(db)
	pattern := strings.ReplaceAll(strings.ReplaceAll(query, "%", "\\%"), "_", "\\_") + "%"

	var players []Player
	err := db.NewSelect().
		Model(&players).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("p.username ILIKE ?", pattern).
				WhereOr("p.name ILIKE ?", pattern).
				WhereOr("p.email ILIKE ?", pattern)
		}).
		Where("p.id != ?", excludeID).
		OrderExpr("p.username NULLS LAST").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	return players, nil
}

// GetCompletedRoundAggregates returns per-round totals for the player's
// completed rounds, oldest first.
func (r *Impl) GetCompletedRoundAggregates(ctx context.Context, db bun.IDB, playerID int64) ([]RoundAggregate, error) {
	db = r.resolveDB(db)
	var aggregates []RoundAggregate
	err := db.NewRaw(`
		SELECT r.id AS round_id,
		       r.course_id,
		       c.name AS course_name,
		       count(sc.id) AS holes_played,
		       coalesce(sum(sc.strokes), 0) AS total_strokes,
		       coalesce(sum(h.par), 0) AS total_par,
		       r.completed_at
		FROM rounds r
		JOIN round_participants rp ON rp.round_id = r.id AND rp.player_id = ?
		JOIN courses c ON c.id = r.course_id
		JOIN score_cells sc ON sc.round_id = r.id AND sc.participant_id = rp.id
		JOIN holes h ON h.course_id = r.course_id AND h.number = sc.hole_number
		WHERE r.completed_at IS NOT NULL
		GROUP BY r.id, r.course_id, c.name, r.completed_at
		ORDER BY r.completed_at ASC, r.id ASC
	`, playerID).Scan(ctx, &aggregates)
	if err != nil {
		return nil, fmt.Errorf("failed to get round aggregates: %w", err)
	}
	return aggregates, nil
}

// GetScoringAverages aggregates putt/fairway/GIR stats over completed rounds.
func (r *Impl) GetScoringAverages(ctx context.Context, db bun.IDB, playerID int64) (*ScoringAverages, error) {
	db = r.resolveDB(db)
	averages := new(ScoringAverages)
	err := db.NewRaw(`
		SELECT count(sc.id) AS holes_played,
		       avg(sc.putts) AS avg_putts,
		       count(*) FILTER (WHERE sc.fairway IS NOT NULL) AS fairway_recorded,
		       count(*) FILTER (WHERE sc.fairway = 'hit') AS fairway_hit,
		       count(*) FILTER (WHERE sc.gir IS NOT NULL) AS gir_recorded,
		       count(*) FILTER (WHERE sc.gir = 'hit') AS gir_hit
		FROM score_cells sc
		JOIN round_participants rp ON rp.id = sc.participant_id AND rp.player_id = ?
		JOIN rounds r ON r.id = sc.round_id
		WHERE r.completed_at IS NOT NULL
	`, playerID).Scan(ctx, averages)
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring averages: %w", err)
	}
	return averages, nil
}

// CountActivityKinds counts the player's activity events by kind.
func (r *Impl) CountActivityKinds(ctx context.Context, db bun.IDB, playerID int64) (map[string]int, error) {
	db = r.resolveDB(db)
	var rows []struct {
		Kind  string `bun:"kind"`
		Count int    `bun:"count"`
	}
	err := db.NewRaw(`
		SELECT kind, count(*) AS count
		FROM activity_events
		WHERE player_id = ?
		GROUP BY kind
	`, playerID).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity kinds: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts, nil
}
