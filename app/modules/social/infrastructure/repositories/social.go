package socialdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new social repository.
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

// AreFriends reports whether a directed edge from playerID to otherID exists.
func (r *Impl) AreFriends(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Friendship)(nil)).
		Where("f.player_id = ?", playerID).
		Where("f.friend_id = ?", otherID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// CreateFriendship inserts both directed rows, ignoring ones already present.
func (r *Impl) CreateFriendship(ctx context.Context, db bun.IDB, playerID, otherID int64) error {
	db = r.resolveDB(db)
	edges := []Friendship{
		{PlayerID: playerID, FriendID: otherID},
		{PlayerID: otherID, FriendID: playerID},
	}
	_, err := db.NewInsert().
		Model(&edges).
		On("CONFLICT (player_id, friend_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// DeleteFriendship removes both directed rows and reports whether any row
// existed.
func (r *Impl) DeleteFriendship(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Friendship)(nil)).
		Where("(player_id = ? AND friend_id = ?) OR (player_id = ? AND friend_id = ?)",
			playerID, otherID, otherID, playerID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete friendship: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListFriends returns the player's friends with profile fields, newest
// friendship first.
func (r *Impl) ListFriends(ctx context.Context, db bun.IDB, playerID int64) ([]FriendInfo, error) {
	db = r.resolveDB(db)
	friends := make([]FriendInfo, 0)
	err := db.NewRaw(`
		SELECT p.id AS player_id, p.external_id, p.username, p.name,
		       p.handicap, f.created_at AS friends_at
		FROM friends f
		JOIN players p ON p.id = f.friend_id
		WHERE f.player_id = ?
		ORDER BY f.created_at DESC, p.id
	`, playerID).Scan(ctx, &friends)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// GetRequestByID retrieves a pending request by primary key.
func (r *Impl) GetRequestByID(ctx context.Context, db bun.IDB, id int64) (*FriendRequest, error) {
	db = r.resolveDB(db)
	request := new(FriendRequest)
	err := db.NewSelect().
		Model(request).
		Where("fr.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get friend request by id: %w", err)
	}
	return request, nil
}

// GetPendingRequest retrieves the pending request from requester to
// recipient, if one exists.
func (r *Impl) GetPendingRequest(ctx context.Context, db bun.IDB, requesterID, recipientID int64) (*FriendRequest, error) {
	db = r.resolveDB(db)
	request := new(FriendRequest)
	err := db.NewSelect().
		Model(request).
		Where("fr.requester_id = ?", requesterID).
		Where("fr.recipient_id = ?", recipientID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending friend request: %w", err)
	}
	return request, nil
}

// CreateRequest inserts a pending request row.
func (r *Impl) CreateRequest(ctx context.Context, db bun.IDB, request *FriendRequest) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(request).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// DeleteRequest removes a pending request by id.
func (r *Impl) DeleteRequest(ctx context.Context, db bun.IDB, id int64) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*FriendRequest)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
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

// ListIncomingRequests returns the player's pending incoming requests with
// requester profiles, newest first.
func (r *Impl) ListIncomingRequests(ctx context.Context, db bun.IDB, recipientID int64) ([]RequestInfo, error) {
	db = r.resolveDB(db)
	requests := make([]RequestInfo, 0)
	err := db.NewRaw(`
		SELECT fr.id, fr.requester_id, p.external_id AS requester_external_id,
		       p.username AS requester_username, p.name AS requester_name,
		       fr.created_at
		FROM friend_requests fr
		JOIN players p ON p.id = fr.requester_id
		WHERE fr.recipient_id = ?
		ORDER BY fr.created_at DESC, fr.id DESC
	`, recipientID).Scan(ctx, &requests)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming friend requests: %w", err)
	}
	return requests, nil
}

// InsertActivityEvent stores an event, reporting false when the unique key
// already holds a row.
func (r *Impl) InsertActivityEvent(ctx context.Context, db bun.IDB, event *ActivityEvent) (bool, error) {
	db = r.resolveDB(db)
	result, err := db.NewInsert().
		Model(event).
		On("CONFLICT (round_id, player_id, hole_number, kind) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert activity event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListFriendActivity returns activity events posted by the player's friends,
// newest first.
func (r *Impl) ListFriendActivity(ctx context.Context, db bun.IDB, playerID int64, limit int) ([]ActivityInfo, error) {
	db = r.resolveDB(db)
	entries := make([]ActivityInfo, 0)
	err := db.NewRaw(`
		SELECT ae.id, ae.player_id, p.external_id AS player_external_id,
		       p.username AS player_username, p.name AS player_name,
		       ae.round_id, c.id AS course_id, c.name AS course_name,
		       ae.hole_number, ae.strokes, ae.par, ae.kind, ae.created_at
		FROM activity_events ae
		JOIN friends f ON f.friend_id = ae.player_id AND f.player_id = ?
		JOIN players p ON p.id = ae.player_id
		JOIN rounds r ON r.id = ae.round_id
		JOIN courses c ON c.id = r.course_id
		ORDER BY ae.created_at DESC, ae.id DESC
		LIMIT ?
	`, playerID, limit).Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend activity: %w", err)
	}
	return entries, nil
}

// BestCompletedTotal returns the player's lowest completed-round total over
// rounds with the given hole count, excluding excludeRoundID. A zero courseID
// compares across all courses.
func (r *Impl) BestCompletedTotal(ctx context.Context, db bun.IDB, playerID int64, courseID int64, holes int, excludeRoundID int64) (*int, error) {
	db = r.resolveDB(db)
	var best sql.NullInt64
	err := db.NewRaw(`
		SELECT MIN(totals.total) FROM (
			SELECT SUM(sc.strokes) AS total
			FROM rounds r
			JOIN round_participants rp ON rp.round_id = r.id AND rp.player_id = ?
			JOIN score_cells sc ON sc.participant_id = rp.id
			WHERE r.completed_at IS NOT NULL
			  AND r.id <> ?
			  AND (? = 0 OR r.course_id = ?)
			  AND (SELECT COUNT(*) FROM holes h WHERE h.course_id = r.course_id) = ?
			GROUP BY r.id
		) totals
	`, playerID, excludeRoundID, courseID, courseID, holes).Scan(ctx, &best)
	if err != nil {
		return nil, fmt.Errorf("failed to get best completed total: %w", err)
	}
	if !best.Valid {
		return nil, nil
	}
	total := int(best.Int64)
	return &total, nil
}
