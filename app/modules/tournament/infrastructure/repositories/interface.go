package tournamentdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for tournament persistence. Bound rounds
// live in the round module's tables; the read methods here join across them.
type Repository interface {
	// Create inserts the tournament row only; groups are inserted separately
	// within the same transaction.
	Create(ctx context.Context, db bun.IDB, tournament *Tournament) error

	// GetByID retrieves the bare tournament row.
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Tournament, error)

	// Update persists name and lifecycle marker changes.
	Update(ctx context.Context, db bun.IDB, tournament *Tournament) error

	// Delete removes the tournament; groups, members, and invites cascade.
	Delete(ctx context.Context, db bun.IDB, id int64) error

	// ListVisible returns tournaments the player owns, belongs to, plays in,
	// or that are public, newest first.
	ListVisible(ctx context.Context, db bun.IDB, playerID int64) ([]TournamentSummary, error)

	// AddGroups inserts group rows.
	AddGroups(ctx context.Context, db bun.IDB, groups []TournamentGroup) error

	// ListGroups returns the tournament's groups in position order.
	ListGroups(ctx context.Context, db bun.IDB, tournamentID int64) ([]TournamentGroup, error)

	// AddMember records membership, ignoring duplicates.
	AddMember(ctx context.Context, db bun.IDB, tournamentID, playerID int64) error

	// IsMember reports whether the player belongs to the tournament.
	IsMember(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (bool, error)

	// CreateInvite inserts a pending invite.
	CreateInvite(ctx context.Context, db bun.IDB, invite *TournamentInvite) error

	// GetInvite retrieves one invite row.
	GetInvite(ctx context.Context, db bun.IDB, id int64) (*TournamentInvite, error)

	// DeleteInvite removes an invite row.
	DeleteInvite(ctx context.Context, db bun.IDB, id int64) error

	// HasPendingInvite reports whether the player already holds an invite to
	// the tournament.
	HasPendingInvite(ctx context.Context, db bun.IDB, tournamentID, recipientID int64) (bool, error)

	// ListInvitesForRecipient returns the player's pending invites, newest
	// first.
	ListInvitesForRecipient(ctx context.Context, db bun.IDB, playerID int64) ([]InviteInfo, error)

	// ListGroupRounds returns the rounds bound to the tournament.
	ListGroupRounds(ctx context.Context, db bun.IDB, tournamentID int64) ([]GroupRound, error)

	// ListParticipants returns every participant of the tournament's rounds
	// with player columns joined in.
	ListParticipants(ctx context.Context, db bun.IDB, tournamentID int64) ([]ParticipantRow, error)

	// ListScores returns every recorded cell of the tournament's rounds.
	ListScores(ctx context.Context, db bun.IDB, tournamentID int64) ([]ScoreRow, error)

	// FindPlayerRound returns the id of the tournament round the player owns
	// or plays in, or nil when there is none.
	FindPlayerRound(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*int64, error)

	// HasOpenRounds reports whether any bound round is still uncompleted.
	HasOpenRounds(ctx context.Context, db bun.IDB, tournamentID int64) (bool, error)

	// DetachRounds clears the tournament binding of every bound round,
	// leaving the rounds standing.
	DetachRounds(ctx context.Context, db bun.IDB, tournamentID int64) error
}
