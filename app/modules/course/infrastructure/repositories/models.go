package coursedb

import (
	"time"

	"github.com/uptrace/bun"
)

// Course is the catalog entry a round is played on. Deleting a course
// archives it; rounds keep their FK.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	OwnerPlayerID int64      `bun:"owner_player_id,notnull" json:"owner_player_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	ArchivedAt    *time.Time `bun:"archived_at,nullzero" json:"archived_at,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Holes []Hole      `bun:"rel:has-many,join:id=course_id" json:"holes,omitempty"`
	Tees  []CourseTee `bun:"rel:has-many,join:id=course_id" json:"tees,omitempty"`
}

// IsArchived reports whether the course has been soft-deleted.
func (c *Course) IsArchived() bool {
	return c.ArchivedAt != nil
}

// TotalPar sums par over the loaded holes.
func (c *Course) TotalPar() int {
	total := 0
	for _, h := range c.Holes {
		total += h.Par
	}
	return total
}

// Hole is one hole of a course. Score cells reference holes by
// (course, number), not by this row's id, so holes can be replaced
// wholesale on course update.
type Hole struct {
	bun.BaseModel `bun:"table:holes,alias:h"`

	ID       int64 `bun:"id,pk,autoincrement" json:"id"`
	CourseID int64 `bun:"course_id,notnull" json:"course_id"`
	Number   int   `bun:"number,notnull" json:"number"`
	Par      int   `bun:"par,notnull" json:"par"`
	Distance *int  `bun:"distance,nullzero" json:"distance,omitempty"`
	Hcp      *int  `bun:"hcp,nullzero" json:"hcp,omitempty"`
}

// CourseTee is a named tee set with optional ratings. Rounds reference
// tees by id, which blocks removing a tee that is in use.
type CourseTee struct {
	bun.BaseModel `bun:"table:course_tees,alias:ct"`

	ID                int64    `bun:"id,pk,autoincrement" json:"id"`
	CourseID          int64    `bun:"course_id,notnull" json:"course_id"`
	TeeName           string   `bun:"tee_name,notnull" json:"tee_name"`
	CourseRating      *float64 `bun:"course_rating,nullzero" json:"course_rating,omitempty"`
	SlopeRating       *int     `bun:"slope_rating,nullzero" json:"slope_rating,omitempty"`
	CourseRatingMen   *float64 `bun:"course_rating_men,nullzero" json:"course_rating_men,omitempty"`
	SlopeRatingMen    *int     `bun:"slope_rating_men,nullzero" json:"slope_rating_men,omitempty"`
	CourseRatingWomen *float64 `bun:"course_rating_women,nullzero" json:"course_rating_women,omitempty"`
	SlopeRatingWomen  *int     `bun:"slope_rating_women,nullzero" json:"slope_rating_women,omitempty"`

	HoleDistances []TeeHoleDistance `bun:"rel:has-many,join:id=tee_id" json:"hole_distances,omitempty"`
}

// TeeHoleDistance is the per-hole distance for one tee.
type TeeHoleDistance struct {
	bun.BaseModel `bun:"table:tee_hole_distances,alias:thd"`

	ID         int64 `bun:"id,pk,autoincrement" json:"id"`
	TeeID      int64 `bun:"tee_id,notnull" json:"tee_id"`
	HoleNumber int   `bun:"hole_number,notnull" json:"hole_number"`
	Distance   int   `bun:"distance,notnull" json:"distance"`
}
