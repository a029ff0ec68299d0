// Package identity carries the authenticated player through request contexts.
package identity

import "context"

// Player is the resolved caller attached to a request after the identity
// middleware has run.
type Player struct {
	ID         int64
	ExternalID string
	Username   *string
	Email      *string
	Name       *string
}

type contextKey struct{}

// WithPlayer returns a context carrying the authenticated player.
func WithPlayer(ctx context.Context, player *Player) context.Context {
	return context.WithValue(ctx, contextKey{}, player)
}

// PlayerFromContext extracts the authenticated player, if any.
func PlayerFromContext(ctx context.Context) (*Player, bool) {
	player, ok := ctx.Value(contextKey{}).(*Player)
	return player, ok
}
