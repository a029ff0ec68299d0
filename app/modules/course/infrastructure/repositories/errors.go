package coursedb

import "errors"

// Sentinel errors for the course repository layer.
var (
	// ErrNotFound indicates the requested course row does not exist.
	ErrNotFound = errors.New("course record not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE affected zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
