package coursedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new course repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts the course row only; holes and tees are inserted
// separately within the same transaction.
func (r *Impl) Create(ctx context.Context, db bun.IDB, course *Course) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(course).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetByID retrieves the bare course row, archived or not.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Course, error) {
	db = r.resolveDB(db)
	course := new(Course)
	err := db.NewSelect().
		Model(course).
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}
	return course, nil
}

// GetDetail retrieves the course with holes, tees, and tee distances
// loaded in display order.
func (r *Impl) GetDetail(ctx context.Context, db bun.IDB, id int64) (*Course, error) {
	db = r.resolveDB(db)
	course := new(Course)
	err := db.NewSelect().
		Model(course).
		Relation("Holes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("number ASC")
		}).
		Relation("Tees", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("id ASC")
		}).
		Relation("Tees.HoleDistances", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("hole_number ASC")
		}).
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course detail: %w", err)
	}
	return course, nil
}

// List returns non-archived courses with their holes loaded.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Course, error) {
	db = r.resolveDB(db)
	var courses []Course
	err := db.NewSelect().
		Model(&courses).
		Relation("Holes", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("number ASC")
		}).
		Where("c.archived_at IS NULL").
		Order("c.name ASC").
		Order("c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Update persists course field changes.
func (r *Impl) Update(ctx context.Context, db bun.IDB, course *Course) error {
	db = r.resolveDB(db)
	course.UpdatedAt = time.Now()
	result, err := db.NewUpdate().
		Model(course).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Archive soft-deletes a course by setting archived_at.
func (r *Impl) Archive(ctx context.Context, db bun.IDB, id int64) error {
	db = r.resolveDB(db)
	now := time.Now()
	result, err := db.NewUpdate().
		Model((*Course)(nil)).
		Set("archived_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("archived_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to archive course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceHoles deletes the course's holes and inserts the given set.
func (r *Impl) ReplaceHoles(ctx context.Context, db bun.IDB, courseID int64, holes []Hole) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*Hole)(nil)).
		Where("course_id = ?", courseID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete holes: %w", err)
	}
	if len(holes) == 0 {
		return nil
	}
	for i := range holes {
		holes[i].CourseID = courseID
	}
	if _, err := db.NewInsert().Model(&holes).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert holes: %w", err)
	}
	return nil
}

// GetTees returns the course's tees without distances.
func (r *Impl) GetTees(ctx context.Context, db bun.IDB, courseID int64) ([]CourseTee, error) {
	db = r.resolveDB(db)
	var tees []CourseTee
	err := db.NewSelect().
		Model(&tees).
		Where("ct.course_id = ?", courseID).
		Order("ct.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tees: %w", err)
	}
	return tees, nil
}

// InsertTee inserts a tee row.
func (r *Impl) InsertTee(ctx context.Context, db bun.IDB, tee *CourseTee) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(tee).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert tee: %w", err)
	}
	return nil
}

// UpdateTee persists tee field changes.
func (r *Impl) UpdateTee(ctx context.Context, db bun.IDB, tee *CourseTee) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model(tee).
		Column("tee_name", "course_rating", "slope_rating",
			"course_rating_men", "slope_rating_men",
			"course_rating_women", "slope_rating_women").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// DeleteTees removes the given tee rows; their distances go with them
// via FK cascade.
func (r *Impl) DeleteTees(ctx context.Context, db bun.IDB, teeIDs []int64) error {
	if len(teeIDs) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*CourseTee)(nil)).
		Where("id IN (?)", bun.In(teeIDs)).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete tees: %w", err)
	}
	return nil
}

// ReplaceTeeDistances deletes the tee's distances and inserts the
// given set.
func (r *Impl) ReplaceTeeDistances(ctx context.Context, db bun.IDB, teeID int64, distances []TeeHoleDistance) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*TeeHoleDistance)(nil)).
		Where("tee_id = ?", teeID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete tee distances: %w", err)
	}
	if len(distances) == 0 {
		return nil
	}
	for i := range distances {
		distances[i].TeeID = teeID
	}
	if _, err := db.NewInsert().Model(&distances).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert tee distances: %w", err)
	}
	return nil
}

// HasUncompletedRounds reports whether any open round references the
// course.
func (r *Impl) HasUncompletedRounds(ctx context.Context, db bun.IDB, courseID int64) (bool, error) {
	db = r.resolveDB(db)
	var exists bool
	err := db.NewRaw(`
		SELECT EXISTS (
			SELECT 1 FROM rounds
			WHERE course_id = ? AND completed_at IS NULL
		)
	`, courseID).Scan(ctx, &exists)
	if err != nil {
		return false, fmt.Errorf("failed to check course rounds: %w", err)
	}
	return exists, nil
}

// AnyTeeInUse reports whether any round references one of the given tees.
func (r *Impl) AnyTeeInUse(ctx context.Context, db bun.IDB, teeIDs []int64) (bool, error) {
	if len(teeIDs) == 0 {
		return false, nil
	}
	db = r.resolveDB(db)
	var exists bool
	err := db.NewRaw(`
		SELECT EXISTS (
			SELECT 1 FROM rounds
			WHERE tee_id IN (?)
		)
	`, bun.In(teeIDs)).Scan(ctx, &exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tee usage: %w", err)
	}
	return exists, nil
}
