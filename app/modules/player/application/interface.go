package playerservice

import (
	"context"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
)

// Service defines the player application operations.
type Service interface {
	EnsurePlayer(ctx context.Context, ident Identity) (*playerdb.Player, error)
	GetByID(ctx context.Context, id int64) (*playerdb.Player, error)
	GetByExternalID(ctx context.Context, externalID string) (*playerdb.Player, error)
	UpdateProfile(ctx context.Context, playerID int64, update ProfileUpdate) (*playerdb.Player, error)
	SearchPlayers(ctx context.Context, callerID int64, query string) ([]playerdb.Player, error)
	GetStats(ctx context.Context, playerID int64) (*PlayerStats, error)
	RenderScoreTrendChart(ctx context.Context, playerID int64) ([]byte, error)
}
