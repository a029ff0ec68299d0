package courseservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

func newTestService(repo coursedb.Repository) *CourseService {
	return NewCourseService(
		repo,
		slog.Default(),
		observability.NewNoopOperationMetrics(),
		nil,
		nil,
	)
}

// validHoles builds n par-4 holes numbered 1..n.
func validHoles(n int) []HoleInput {
	holes := make([]HoleInput, 0, n)
	for number := 1; number <= n; number++ {
		holes = append(holes, HoleInput{Number: number, Par: 4})
	}
	return holes
}

// validDistances builds one distance per hole 1..n.
func validDistances(n int) []TeeHoleDistanceInput {
	distances := make([]TeeHoleDistanceInput, 0, n)
	for number := 1; number <= n; number++ {
		distances = append(distances, TeeHoleDistanceInput{HoleNumber: number, Distance: 250 + number})
	}
	return distances
}

func TestCreateCourseValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CourseInput)
		wantMsg string
	}{
		{
			name:    "empty name",
			mutate:  func(in *CourseInput) { in.Name = "   " },
			wantMsg: "Course name is required",
		},
		{
			name:    "twelve holes rejected",
			mutate:  func(in *CourseInput) { in.Holes = validHoles(12) },
			wantMsg: "Course must have 9 or 18 holes",
		},
		{
			name: "gap in hole numbers",
			mutate: func(in *CourseInput) {
				in.Holes[8].Number = 10
			},
			wantMsg: "Hole numbers must run from 1 to 9 without gaps",
		},
		{
			name: "duplicate hole number",
			mutate: func(in *CourseInput) {
				in.Holes[8].Number = 1
			},
			wantMsg: "Duplicate hole number: 1",
		},
		{
			name: "par out of range",
			mutate: func(in *CourseInput) {
				in.Holes[2].Par = 6
			},
			wantMsg: "Hole 3 par must be between 3 and 5",
		},
		{
			name: "hcp on some holes only",
			mutate: func(in *CourseInput) {
				in.Holes[0].Hcp = ptrInt(1)
			},
			wantMsg: "Hcp must be set on all holes or none",
		},
		{
			name: "hcp not a permutation",
			mutate: func(in *CourseInput) {
				for i := range in.Holes {
					in.Holes[i].Hcp = ptrInt(1)
				}
			},
			wantMsg: "Hcp values must be a permutation of 1..9",
		},
		{
			name: "blank tee name",
			mutate: func(in *CourseInput) {
				in.Tees = []TeeInput{{TeeName: "  "}}
			},
			wantMsg: "Tee name is required",
		},
		{
			name: "duplicate tee name ignoring case",
			mutate: func(in *CourseInput) {
				in.Tees = []TeeInput{
					{TeeName: "Blue", HoleDistances: validDistances(9)},
					{TeeName: "blue", HoleDistances: validDistances(9)},
				}
			},
			wantMsg: "Duplicate tee name: blue",
		},
		{
			name: "tee without distances rejected",
			mutate: func(in *CourseInput) {
				in.Tees = []TeeInput{{TeeName: "Yellow"}}
			},
			wantMsg: "Tee Yellow must have one distance per hole",
		},
		{
			name: "tee distances missing a hole",
			mutate: func(in *CourseInput) {
				in.Tees = []TeeInput{{
					TeeName:       "Blue",
					HoleDistances: validDistances(8),
				}}
			},
			wantMsg: "Tee Blue must have one distance per hole",
		},
		{
			name: "tee distance for unknown hole",
			mutate: func(in *CourseInput) {
				distances := validDistances(8)
				distances = append(distances, TeeHoleDistanceInput{HoleNumber: 10, Distance: 320})
				in.Tees = []TeeInput{{
					TeeName:       "Blue",
					HoleDistances: distances,
				}}
			},
			wantMsg: "Tee Blue has a distance for unknown hole 10",
		},
		{
			name: "tee with duplicated hole distance",
			mutate: func(in *CourseInput) {
				distances := validDistances(8)
				distances = append(distances, TeeHoleDistanceInput{HoleNumber: 1, Distance: 320})
				in.Tees = []TeeInput{{
					TeeName:       "Blue",
					HoleDistances: distances,
				}}
			},
			wantMsg: "Tee Blue has duplicate distances for hole 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeCourseRepo()
			svc := newTestService(fakeRepo)

			input := CourseInput{Name: "Sunset Valley", Holes: validHoles(9)}
			tt.mutate(&input)

			_, err := svc.CreateCourse(context.Background(), 1, input)

			var invalid types.ValidationError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantMsg, invalid.Message)
			assert.Empty(t, fakeRepo.Trace(), "invalid payloads must not hit the repository")
		})
	}
}

func TestCreateCourse(t *testing.T) {
	t.Run("persists course with holes and tees", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		fakeRepo.CreateFunc = func(ctx context.Context, db bun.IDB, course *coursedb.Course) error {
			course.ID = 42
			return nil
		}
		var insertedTee *coursedb.CourseTee
		fakeRepo.InsertTeeFunc = func(ctx context.Context, db bun.IDB, tee *coursedb.CourseTee) error {
			tee.ID = 9
			insertedTee = tee
			return nil
		}
		var gotDistances []coursedb.TeeHoleDistance
		fakeRepo.ReplaceTeeDistancesFunc = func(ctx context.Context, db bun.IDB, teeID int64, distances []coursedb.TeeHoleDistance) error {
			gotDistances = distances
			return nil
		}

		svc := newTestService(fakeRepo)

		distances := make([]TeeHoleDistanceInput, 0, 9)
		for number := 1; number <= 9; number++ {
			distances = append(distances, TeeHoleDistanceInput{HoleNumber: number, Distance: 250 + number})
		}
		input := CourseInput{
			Name:  "  Sunset Valley ",
			Holes: validHoles(9),
			Tees: []TeeInput{{
				TeeName:       "Yellow",
				CourseRating:  ptrFloat(70.2),
				SlopeRating:   ptrInt(118),
				HoleDistances: distances,
			}},
		}

		course, err := svc.CreateCourse(context.Background(), 5, input)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), course.ID)
		assert.Equal(t, int64(5), course.OwnerPlayerID)
		assert.Equal(t, "Sunset Valley", course.Name)
		assert.Len(t, course.Holes, 9)
		assert.Len(t, course.Tees, 1)
		assert.NotNil(t, insertedTee)
		assert.Equal(t, int64(42), insertedTee.CourseID)
		assert.Equal(t, "Yellow", insertedTee.TeeName)
		assert.Len(t, gotDistances, 9)
		assert.Equal(t, []string{"Create", "ReplaceHoles", "InsertTee", "ReplaceTeeDistances"}, fakeRepo.Trace())
	})

	t.Run("eighteen holes without tees", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		svc := newTestService(fakeRepo)

		course, err := svc.CreateCourse(context.Background(), 5, CourseInput{
			Name:  "Long Course",
			Holes: validHoles(18),
		})

		assert.NoError(t, err)
		assert.Len(t, course.Holes, 18)
		assert.Empty(t, course.Tees)
	})
}

func TestUpdateCourse(t *testing.T) {
	owned := func() *coursedb.Course {
		return &coursedb.Course{ID: 3, OwnerPlayerID: 5, Name: "Old Name"}
	}

	t.Run("non-owner rejected", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		fakeRepo.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return owned(), nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.UpdateCourse(context.Background(), 99, 3, CourseInput{Name: "X", Holes: validHoles(9)})

		var denied types.AuthorizationError
		assert.ErrorAs(t, err, &denied)
		assert.Equal(t, "Not allowed", denied.Message)
	})

	t.Run("archived course reads as missing", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		archivedAt := time.Now()
		fakeRepo.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			c := owned()
			c.ArchivedAt = &archivedAt
			return c, nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.UpdateCourse(context.Background(), 5, 3, CourseInput{Name: "X", Holes: validHoles(9)})

		var missing types.NotFoundError
		assert.ErrorAs(t, err, &missing)
	})

	t.Run("tee matched by name is updated not reinserted", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		fakeRepo.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return owned(), nil
		}
		fakeRepo.GetTeesFunc = func(ctx context.Context, db bun.IDB, courseID int64) ([]coursedb.CourseTee, error) {
			return []coursedb.CourseTee{{ID: 11, CourseID: 3, TeeName: "Blue"}}, nil
		}
		var updatedTee *coursedb.CourseTee
		fakeRepo.UpdateTeeFunc = func(ctx context.Context, db bun.IDB, tee *coursedb.CourseTee) error {
			updatedTee = tee
			return nil
		}
		fakeRepo.GetDetailFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return owned(), nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.UpdateCourse(context.Background(), 5, 3, CourseInput{
			Name:  "New Name",
			Holes: validHoles(9),
			Tees:  []TeeInput{{TeeName: "blue", SlopeRating: ptrInt(122), HoleDistances: validDistances(9)}},
		})

		assert.NoError(t, err)
		assert.NotNil(t, updatedTee)
		assert.Equal(t, int64(11), updatedTee.ID)
		assert.Equal(t, "blue", updatedTee.TeeName)
		assert.Equal(t, 122, *updatedTee.SlopeRating)
		assert.NotContains(t, fakeRepo.Trace(), "InsertTee")
		assert.NotContains(t, fakeRepo.Trace(), "DeleteTees")
	})

	t.Run("removing a tee used by rounds conflicts", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		fakeRepo.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return owned(), nil
		}
		fakeRepo.GetTeesFunc = func(ctx context.Context, db bun.IDB, courseID int64) ([]coursedb.CourseTee, error) {
			return []coursedb.CourseTee{{ID: 11, CourseID: 3, TeeName: "Blue"}}, nil
		}
		fakeRepo.AnyTeeInUseFunc = func(ctx context.Context, db bun.IDB, teeIDs []int64) (bool, error) {
			assert.Equal(t, []int64{11}, teeIDs)
			return true, nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.UpdateCourse(context.Background(), 5, 3, CourseInput{
			Name:  "New Name",
			Holes: validHoles(9),
		})

		var conflict types.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Cannot remove a tee that is used by rounds", conflict.Message)
		assert.NotContains(t, fakeRepo.Trace(), "DeleteTees")
	})

	t.Run("unused removed tee is deleted", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		fakeRepo.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return owned(), nil
		}
		fakeRepo.GetTeesFunc = func(ctx context.Context, db bun.IDB, courseID int64) ([]coursedb.CourseTee, error) {
			return []coursedb.CourseTee{
				{ID: 11, CourseID: 3, TeeName: "Blue"},
				{ID: 12, CourseID: 3, TeeName: "Red"},
			}, nil
		}
		var deleted []int64
		fakeRepo.DeleteTeesFunc = func(ctx context.Context, db bun.IDB, teeIDs []int64) error {
			deleted = teeIDs
			return nil
		}
		fakeRepo.GetDetailFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return owned(), nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.UpdateCourse(context.Background(), 5, 3, CourseInput{
			Name:  "New Name",
			Holes: validHoles(9),
			Tees:  []TeeInput{{TeeName: "Blue", HoleDistances: validDistances(9)}},
		})

		assert.NoError(t, err)
		assert.Equal(t, []int64{12}, deleted)
	})
}

func TestDeleteCourse(t *testing.T) {
	owned := func() *coursedb.Course {
		return &coursedb.Course{ID: 3, OwnerPlayerID: 5, Name: "Sunset Valley"}
	}

	tests := []struct {
		name      string
		callerID  int64
		setupRepo func(*FakeCourseRepo)
		check     func(*testing.T, error, *FakeCourseRepo)
	}{
		{
			name:     "owner archives idle course",
			callerID: 5,
			setupRepo: func(f *FakeCourseRepo) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
					return owned(), nil
				}
			},
			check: func(t *testing.T, err error, f *FakeCourseRepo) {
				assert.NoError(t, err)
				assert.Contains(t, f.Trace(), "Archive")
			},
		},
		{
			name:     "non-owner rejected",
			callerID: 99,
			setupRepo: func(f *FakeCourseRepo) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
					return owned(), nil
				}
			},
			check: func(t *testing.T, err error, f *FakeCourseRepo) {
				var denied types.AuthorizationError
				assert.ErrorAs(t, err, &denied)
				assert.NotContains(t, f.Trace(), "Archive")
			},
		},
		{
			name:     "active rounds block archiving",
			callerID: 5,
			setupRepo: func(f *FakeCourseRepo) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
					return owned(), nil
				}
				f.HasUncompletedRoundsFunc = func(ctx context.Context, db bun.IDB, courseID int64) (bool, error) {
					return true, nil
				}
			},
			check: func(t *testing.T, err error, f *FakeCourseRepo) {
				var conflict types.ConflictError
				assert.ErrorAs(t, err, &conflict)
				assert.Equal(t, "Course has active rounds", conflict.Message)
				assert.NotContains(t, f.Trace(), "Archive")
			},
		},
		{
			name:      "unknown course",
			callerID:  5,
			setupRepo: func(f *FakeCourseRepo) {},
			check: func(t *testing.T, err error, f *FakeCourseRepo) {
				var missing types.NotFoundError
				assert.ErrorAs(t, err, &missing)
			},
		},
		{
			name:     "repository error propagates",
			callerID: 5,
			setupRepo: func(f *FakeCourseRepo) {
				f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
					return nil, errors.New("database connection failed")
				}
			},
			check: func(t *testing.T, err error, f *FakeCourseRepo) {
				assert.Error(t, err)
				var missing types.NotFoundError
				assert.False(t, errors.As(err, &missing))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeCourseRepo()
			tt.setupRepo(fakeRepo)

			svc := newTestService(fakeRepo)

			err := svc.DeleteCourse(context.Background(), tt.callerID, 3)
			tt.check(t, err, fakeRepo)
		})
	}
}

func TestGetCourse(t *testing.T) {
	t.Run("archived course reads as missing", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		archivedAt := time.Now()
		fakeRepo.GetDetailFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return &coursedb.Course{ID: 3, ArchivedAt: &archivedAt}, nil
		}
		svc := newTestService(fakeRepo)

		_, err := svc.GetCourse(context.Background(), 3)

		var missing types.NotFoundError
		assert.ErrorAs(t, err, &missing)
		assert.Equal(t, "Course not found", missing.Message)
	})

	t.Run("returns detail with holes and tees", func(t *testing.T) {
		fakeRepo := NewFakeCourseRepo()
		fakeRepo.GetDetailFunc = func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
			return &coursedb.Course{
				ID:   3,
				Name: "Sunset Valley",
				Holes: []coursedb.Hole{
					{Number: 1, Par: 4},
					{Number: 2, Par: 3},
				},
				Tees: []coursedb.CourseTee{{ID: 11, TeeName: "Blue"}},
			}, nil
		}
		svc := newTestService(fakeRepo)

		course, err := svc.GetCourse(context.Background(), 3)

		assert.NoError(t, err)
		assert.Len(t, course.Holes, 2)
		assert.Equal(t, 7, course.TotalPar())
		assert.Len(t, course.Tees, 1)
	})
}

// --- pointer helpers ---

func ptrInt(v int) *int {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}
