package socialservice

import (
	"context"

	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
)

// PlayerDirectory is the slice of the player repository the social module
// reads when resolving friend references.
type PlayerDirectory interface {
	GetByID(ctx context.Context, db bun.IDB, id int64) (*playerdb.Player, error)
	GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*playerdb.Player, error)
	GetByRef(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error)
}

// FriendRequestOutcome reports what a send-request call did. Accepted is true
// when the friendship already existed or a reciprocal request auto-accepted;
// Request carries the pending row otherwise.
type FriendRequestOutcome struct {
	Accepted bool
	Request  *socialdb.FriendRequest
}

// Service is the application-facing contract of the social module.
type Service interface {
	// SendFriendRequest resolves ref to a player and creates a pending
	// request. Sending to an existing friend is an idempotent no-op; a
	// reciprocal pending request auto-accepts both directions.
	SendFriendRequest(ctx context.Context, callerID int64, ref string) (*FriendRequestOutcome, error)

	// AcceptFriendRequest creates the symmetric friendship edge and removes
	// the request. Recipient only.
	AcceptFriendRequest(ctx context.Context, callerID int64, requestID int64) error

	// DeclineFriendRequest removes the request without creating an edge.
	// Recipient only.
	DeclineFriendRequest(ctx context.Context, callerID int64, requestID int64) error

	// RemoveFriend removes the symmetric edge; idempotent when no edge
	// exists. The player itself must exist.
	RemoveFriend(ctx context.Context, callerID int64, externalID string) error

	// ListFriends returns the caller's friends, newest friendship first.
	ListFriends(ctx context.Context, callerID int64) ([]socialdb.FriendInfo, error)

	// ListIncomingRequests returns the caller's pending incoming requests,
	// newest first.
	ListIncomingRequests(ctx context.Context, callerID int64) ([]socialdb.RequestInfo, error)

	// GetActivityFeed returns the caller's friends' activity, newest first.
	GetActivityFeed(ctx context.Context, callerID int64, limit int) ([]socialdb.ActivityInfo, error)

	// RecordScoreActivity projects one submitted score into the activity
	// feed when it is a birdie or better by a registered player. Replays are
	// deduplicated; the returned slice holds only newly stored events.
	RecordScoreActivity(ctx context.Context, payload *events.ScoreSubmittedPayloadV1) ([]socialdb.ActivityEvent, error)

	// RecordRoundCompletion projects personal bests for each registered
	// participant of a completed round. A personal best requires at least
	// one prior completed round with the same hole count; the first
	// comparable round only sets the baseline.
	RecordRoundCompletion(ctx context.Context, payload *events.RoundCompletedPayloadV1) ([]socialdb.ActivityEvent, error)
}
