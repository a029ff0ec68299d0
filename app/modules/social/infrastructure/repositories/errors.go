package socialdb

import "errors"

// Sentinel errors for the social repository layer.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("social record not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE affected zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
