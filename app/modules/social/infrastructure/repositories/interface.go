package socialdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for friendship and activity persistence.
type Repository interface {
	// AreFriends reports whether a directed edge from playerID to otherID
	// exists. Edges are always written in pairs, so one direction suffices.
	AreFriends(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error)

	// CreateFriendship inserts both directed rows, ignoring ones already
	// present.
	CreateFriendship(ctx context.Context, db bun.IDB, playerID, otherID int64) error

	// DeleteFriendship removes both directed rows and reports whether any
	// row existed.
	DeleteFriendship(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error)

	// ListFriends returns the player's friends with profile fields, newest
	// friendship first.
	ListFriends(ctx context.Context, db bun.IDB, playerID int64) ([]FriendInfo, error)

	// GetRequestByID retrieves a pending request by primary key.
	GetRequestByID(ctx context.Context, db bun.IDB, id int64) (*FriendRequest, error)

	// GetPendingRequest retrieves the pending request from requester to
	// recipient, if one exists.
	GetPendingRequest(ctx context.Context, db bun.IDB, requesterID, recipientID int64) (*FriendRequest, error)

	// CreateRequest inserts a pending request row.
	CreateRequest(ctx context.Context, db bun.IDB, request *FriendRequest) error

	// DeleteRequest removes a pending request by id.
	DeleteRequest(ctx context.Context, db bun.IDB, id int64) error

	// ListIncomingRequests returns the player's pending incoming requests
	// with requester profiles, newest first.
	ListIncomingRequests(ctx context.Context, db bun.IDB, recipientID int64) ([]RequestInfo, error)

	// InsertActivityEvent stores an event, reporting false when the unique
	// key already holds a row (projection replay).
	InsertActivityEvent(ctx context.Context, db bun.IDB, event *ActivityEvent) (bool, error)

	// ListFriendActivity returns activity events posted by the player's
	// friends, newest first, at most limit rows.
	ListFriendActivity(ctx context.Context, db bun.IDB, playerID int64, limit int) ([]ActivityInfo, error)

	// BestCompletedTotal returns the player's lowest completed-round total
	// over rounds with the given hole count, excluding excludeRoundID. Nil
	// when no comparable round exists. A zero courseID compares across all
	// courses.
	BestCompletedTotal(ctx context.Context, db bun.IDB, playerID int64, courseID int64, holes int, excludeRoundID int64) (*int, error)
}
