package rounddb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for round persistence.
//
// All methods accept an optional transaction handle; passing nil falls back
// to the repository's own connection.
type Repository interface {
	// Create inserts a new round row.
	Create(ctx context.Context, db bun.IDB, round *Round) error

	// GetByID retrieves a round by primary key.
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Round, error)

	// ListSummariesForPlayer returns list-view projections of every round the
	// player owns or participates in, newest first.
	ListSummariesForPlayer(ctx context.Context, db bun.IDB, playerID int64) ([]RoundSummary, error)

	// GetParticipants returns the round's participants with player labels,
	// in insertion order.
	GetParticipants(ctx context.Context, db bun.IDB, roundID int64) ([]ParticipantInfo, error)

	// AddParticipants bulk-inserts participant rows.
	AddParticipants(ctx context.Context, db bun.IDB, participants []RoundParticipant) error

	// GetCells returns every score cell of the round.
	GetCells(ctx context.Context, db bun.IDB, roundID int64) ([]ScoreCell, error)

	// UpsertCell inserts a score cell or overwrites the existing one for the
	// same (round, participant, hole).
	UpsertCell(ctx context.Context, db bun.IDB, cell *ScoreCell) error

	// InsertCells bulk-inserts score cells for a freshly created round.
	InsertCells(ctx context.Context, db bun.IDB, cells []ScoreCell) error

	// CountCells counts the round's score cells.
	CountCells(ctx context.Context, db bun.IDB, roundID int64) (int, error)

	// SetCompleted stamps the round completed.
	SetCompleted(ctx context.Context, db bun.IDB, roundID int64, completedAt time.Time) error

	// HasActiveRound reports whether the owner already has an uncompleted round.
	HasActiveRound(ctx context.Context, db bun.IDB, ownerID int64) (bool, error)

	// Delete removes the round; participants and cells cascade.
	Delete(ctx context.Context, db bun.IDB, roundID int64) error

	// DeleteIfAbandoned removes the round only if it is still uncompleted and
	// has no score cells. Reports whether a row was deleted.
	DeleteIfAbandoned(ctx context.Context, db bun.IDB, roundID int64) (bool, error)

	// ListAbandoned returns ids of uncompleted, scoreless rounds started
	// before cutoff.
	ListAbandoned(ctx context.Context, db bun.IDB, cutoff time.Time) ([]int64, error)

	// GetTournamentLockState reads the pause/finish markers of a tournament.
	GetTournamentLockState(ctx context.Context, db bun.IDB, tournamentID int64) (*TournamentLockState, error)
}
