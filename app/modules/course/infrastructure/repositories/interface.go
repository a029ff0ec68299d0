package coursedb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for course persistence.
type Repository interface {
	// Create inserts the course row only; holes and tees are inserted
	// separately within the same transaction.
	Create(ctx context.Context, db bun.IDB, course *Course) error

	// GetByID retrieves the bare course row, archived or not.
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Course, error)

	// GetDetail retrieves the course with holes, tees, and tee distances
	// loaded in display order.
	GetDetail(ctx context.Context, db bun.IDB, id int64) (*Course, error)

	// List returns non-archived courses with their holes loaded.
	List(ctx context.Context, db bun.IDB) ([]Course, error)

	// Update persists course field changes.
	Update(ctx context.Context, db bun.IDB, course *Course) error

	// Archive soft-deletes a course by setting archived_at.
	Archive(ctx context.Context, db bun.IDB, id int64) error

	// ReplaceHoles deletes the course's holes and inserts the given set.
	ReplaceHoles(ctx context.Context, db bun.IDB, courseID int64, holes []Hole) error

	// GetTees returns the course's tees without distances.
	GetTees(ctx context.Context, db bun.IDB, courseID int64) ([]CourseTee, error)

	// InsertTee inserts a tee row.
	InsertTee(ctx context.Context, db bun.IDB, tee *CourseTee) error

	// UpdateTee persists tee field changes.
	UpdateTee(ctx context.Context, db bun.IDB, tee *CourseTee) error

	// DeleteTees removes the given tee rows and their distances.
	DeleteTees(ctx context.Context, db bun.IDB, teeIDs []int64) error

	// ReplaceTeeDistances deletes the tee's distances and inserts the
	// given set.
	ReplaceTeeDistances(ctx context.Context, db bun.IDB, teeID int64, distances []TeeHoleDistance) error

	// HasUncompletedRounds reports whether any open round references the
	// course.
	HasUncompletedRounds(ctx context.Context, db bun.IDB, courseID int64) (bool, error)

	// AnyTeeInUse reports whether any round references one of the given
	// tees.
	AnyTeeInUse(ctx context.Context, db bun.IDB, teeIDs []int64) (bool, error)
}
