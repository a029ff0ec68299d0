package tournamentdb

import "errors"

// Sentinel errors for the tournament repository layer.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("tournament record not found")
)
