package courseservice

import (
	"context"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
)

// CourseInput is the full course payload. Create and update take the same
// shape; update replaces holes wholesale and upserts tees.
type CourseInput struct {
	Name  string
	Holes []HoleInput
	Tees  []TeeInput
}

// HoleInput describes one hole of the payload.
type HoleInput struct {
	Number   int
	Par      int
	Distance *int
	Hcp      *int
}

// TeeInput describes one tee of the payload. ID targets an existing tee on
// update; without it the tee is matched by name, then inserted.
type TeeInput struct {
	ID                *int64
	TeeName           string
	CourseRating      *float64
	SlopeRating       *int
	CourseRatingMen   *float64
	SlopeRatingMen    *int
	CourseRatingWomen *float64
	SlopeRatingWomen  *int
	HoleDistances     []TeeHoleDistanceInput
}

// TeeHoleDistanceInput is one per-hole distance of a tee.
type TeeHoleDistanceInput struct {
	HoleNumber int
	Distance   int
}

// Service defines the course application operations.
type Service interface {
	CreateCourse(ctx context.Context, callerID int64, input CourseInput) (*coursedb.Course, error)
	UpdateCourse(ctx context.Context, callerID int64, courseID int64, input CourseInput) (*coursedb.Course, error)
	DeleteCourse(ctx context.Context, callerID int64, courseID int64) error
	ListCourses(ctx context.Context) ([]coursedb.Course, error)
	GetCourse(ctx context.Context, courseID int64) (*coursedb.Course, error)
}
