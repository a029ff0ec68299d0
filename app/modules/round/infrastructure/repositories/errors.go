package rounddb

import "errors"

var (
	// ErrNotFound indicates the requested round record does not exist.
	ErrNotFound = errors.New("round record not found")

	// ErrNoRowsAffected indicates an UPDATE or DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
