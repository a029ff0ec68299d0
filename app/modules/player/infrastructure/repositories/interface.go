package playerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for player persistence.
type Repository interface {
	// GetByID retrieves a player by primary key.
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Player, error)

	// GetByExternalID retrieves a player by identity subject.
	GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*Player, error)

	// GetByRef resolves a player reference: external id first, then email,
	// then username.
	GetByRef(ctx context.Context, db bun.IDB, ref string) (*Player, error)

	// Create inserts a new player row.
	Create(ctx context.Context, db bun.IDB, player *Player) error

	// Update persists profile field changes.
	Update(ctx context.Context, db bun.IDB, player *Player) error

	// ExistsWithUsername reports whether another player already claimed username.
	ExistsWithUsername(ctx context.Context, db bun.IDB, username string, excludeID int64) (bool, error)

	// ExistsWithEmail reports whether another player already claimed email.
	ExistsWithEmail(ctx context.Context, db bun.IDB, email string, excludeID int64) (bool, error)

	// Search finds players whose username, name, or email starts with query.
	Search(ctx context.Context, db bun.IDB, query string, excludeID int64, limit int) ([]Player, error)

	// GetCompletedRoundAggregates returns per-round totals for the player's
	// completed rounds, oldest first.
	GetCompletedRoundAggregates(ctx context.Context, db bun.IDB, playerID int64) ([]RoundAggregate, error)

	// GetScoringAverages aggregates putt/fairway/GIR stats over completed rounds.
	GetScoringAverages(ctx context.Context, db bun.IDB, playerID int64) (*ScoringAverages, error)

	// CountActivityKinds counts the player's activity events by kind.
	CountActivityKinds(ctx context.Context, db bun.IDB, playerID int64) (map[string]int, error)
}
