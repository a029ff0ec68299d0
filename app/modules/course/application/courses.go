package courseservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// CreateCourse validates and persists a new course with its holes and tees.
func (s *CourseService) CreateCourse(ctx context.Context, callerID int64, input CourseInput) (*coursedb.Course, error) {
	result, err := withTelemetry(s, ctx, "CreateCourse", input.Name, func(ctx context.Context) (results.OperationResult[*coursedb.Course, error], error) {
		if validationErr := validateCourseInput(&input); validationErr != nil {
			return results.FailureResult[*coursedb.Course, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*coursedb.Course, error], error) {
			return s.createCourse(ctx, db, callerID, input)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *CourseService) createCourse(ctx context.Context, db bun.IDB, callerID int64, input CourseInput) (results.OperationResult[*coursedb.Course, error], error) {
	course := &coursedb.Course{
		OwnerPlayerID: callerID,
		Name:          input.Name,
	}
	if err := s.repo.Create(ctx, db, course); err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}

	holes := holesFromInput(input.Holes)
	if err := s.repo.ReplaceHoles(ctx, db, course.ID, holes); err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	course.Holes = holes

	for _, teeInput := range input.Tees {
		tee := &coursedb.CourseTee{CourseID: course.ID}
		applyTeeInput(tee, teeInput)
		if err := s.repo.InsertTee(ctx, db, tee); err != nil {
			return results.OperationResult[*coursedb.Course, error]{}, err
		}
		distances := distancesFromInput(teeInput.HoleDistances)
		if err := s.repo.ReplaceTeeDistances(ctx, db, tee.ID, distances); err != nil {
			return results.OperationResult[*coursedb.Course, error]{}, err
		}
		tee.HoleDistances = distances
		course.Tees = append(course.Tees, *tee)
	}

	return results.SuccessResult[*coursedb.Course, error](course), nil
}

// UpdateCourse replaces the course's holes wholesale and upserts its tees.
// Tees are matched by id first, then by name ignoring case; leftover tees
// are removed unless a round references them.
func (s *CourseService) UpdateCourse(ctx context.Context, callerID int64, courseID int64, input CourseInput) (*coursedb.Course, error) {
	result, err := withTelemetry(s, ctx, "UpdateCourse", fmt.Sprintf("%d", courseID), func(ctx context.Context) (results.OperationResult[*coursedb.Course, error], error) {
		if validationErr := validateCourseInput(&input); validationErr != nil {
			return results.FailureResult[*coursedb.Course, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*coursedb.Course, error], error) {
			return s.updateCourse(ctx, db, callerID, courseID, input)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *CourseService) updateCourse(ctx context.Context, db bun.IDB, callerID int64, courseID int64, input CourseInput) (results.OperationResult[*coursedb.Course, error], error) {
	fail := func(err error) (results.OperationResult[*coursedb.Course, error], error) {
		return results.FailureResult[*coursedb.Course, error](err), nil
	}

	course, err := s.repo.GetByID(ctx, db, courseID)
	if err != nil {
		if errors.Is(err, coursedb.ErrNotFound) {
			return fail(types.NewNotFoundError("Course not found"))
		}
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	if course.IsArchived() {
		return fail(types.NewNotFoundError("Course not found"))
	}
	if course.OwnerPlayerID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	course.Name = input.Name
	if err := s.repo.Update(ctx, db, course); err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}

	if err := s.repo.ReplaceHoles(ctx, db, courseID, holesFromInput(input.Holes)); err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}

	existing, err := s.repo.GetTees(ctx, db, courseID)
	if err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	existingByID := make(map[int64]*coursedb.CourseTee, len(existing))
	existingByName := make(map[string]*coursedb.CourseTee, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
		existingByName[strings.ToLower(existing[i].TeeName)] = &existing[i]
	}

	kept := make(map[int64]bool, len(existing))
	for _, teeInput := range input.Tees {
		var target *coursedb.CourseTee
		if teeInput.ID != nil {
			target = existingByID[*teeInput.ID]
		}
		if target == nil {
			target = existingByName[strings.ToLower(teeInput.TeeName)]
		}
		if target != nil && kept[target.ID] {
			// Already consumed by an earlier payload entry; treat as new.
			target = nil
		}

		if target == nil {
			tee := &coursedb.CourseTee{CourseID: courseID}
			applyTeeInput(tee, teeInput)
			if err := s.repo.InsertTee(ctx, db, tee); err != nil {
				return results.OperationResult[*coursedb.Course, error]{}, err
			}
			if err := s.repo.ReplaceTeeDistances(ctx, db, tee.ID, distancesFromInput(teeInput.HoleDistances)); err != nil {
				return results.OperationResult[*coursedb.Course, error]{}, err
			}
			continue
		}

		kept[target.ID] = true
		applyTeeInput(target, teeInput)
		if err := s.repo.UpdateTee(ctx, db, target); err != nil {
			return results.OperationResult[*coursedb.Course, error]{}, err
		}
		if err := s.repo.ReplaceTeeDistances(ctx, db, target.ID, distancesFromInput(teeInput.HoleDistances)); err != nil {
			return results.OperationResult[*coursedb.Course, error]{}, err
		}
	}

	var removed []int64
	for i := range existing {
		if !kept[existing[i].ID] {
			removed = append(removed, existing[i].ID)
		}
	}
	if len(removed) > 0 {
		inUse, usageErr := s.repo.AnyTeeInUse(ctx, db, removed)
		if usageErr != nil {
			return results.OperationResult[*coursedb.Course, error]{}, usageErr
		}
		if inUse {
			return fail(types.NewConflictError("Cannot remove a tee that is used by rounds"))
		}
		if err := s.repo.DeleteTees(ctx, db, removed); err != nil {
			return results.OperationResult[*coursedb.Course, error]{}, err
		}
	}

	detail, err := s.repo.GetDetail(ctx, db, courseID)
	if err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	return results.SuccessResult[*coursedb.Course, error](detail), nil
}

// DeleteCourse archives a course once no open round references it.
func (s *CourseService) DeleteCourse(ctx context.Context, callerID int64, courseID int64) error {
	result, err := withTelemetry(s, ctx, "DeleteCourse", fmt.Sprintf("%d", courseID), func(ctx context.Context) (results.OperationResult[*coursedb.Course, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*coursedb.Course, error], error) {
			return s.deleteCourse(ctx, db, callerID, courseID)
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

func (s *CourseService) deleteCourse(ctx context.Context, db bun.IDB, callerID int64, courseID int64) (results.OperationResult[*coursedb.Course, error], error) {
	fail := func(err error) (results.OperationResult[*coursedb.Course, error], error) {
		return results.FailureResult[*coursedb.Course, error](err), nil
	}

	course, err := s.repo.GetByID(ctx, db, courseID)
	if err != nil {
		if errors.Is(err, coursedb.ErrNotFound) {
			return fail(types.NewNotFoundError("Course not found"))
		}
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	if course.IsArchived() {
		return fail(types.NewNotFoundError("Course not found"))
	}
	if course.OwnerPlayerID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	hasRounds, err := s.repo.HasUncompletedRounds(ctx, db, courseID)
	if err != nil {
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	if hasRounds {
		return fail(types.NewConflictError("Course has active rounds"))
	}

	if err := s.repo.Archive(ctx, db, courseID); err != nil {
		if errors.Is(err, coursedb.ErrNotFound) {
			return fail(types.NewNotFoundError("Course not found"))
		}
		return results.OperationResult[*coursedb.Course, error]{}, err
	}
	return results.SuccessResult[*coursedb.Course, error](course), nil
}

// ListCourses returns all non-archived courses with holes loaded.
func (s *CourseService) ListCourses(ctx context.Context) ([]coursedb.Course, error) {
	result, err := withTelemetry(s, ctx, "ListCourses", "all", func(ctx context.Context) (results.OperationResult[[]coursedb.Course, error], error) {
		courses, repoErr := s.repo.List(ctx, nil)
		if repoErr != nil {
			return results.OperationResult[[]coursedb.Course, error]{}, repoErr
		}
		return results.SuccessResult[[]coursedb.Course, error](courses), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GetCourse returns a course with holes and tees; archived courses read as
// absent.
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) (*coursedb.Course, error) {
	result, err := withTelemetry(s, ctx, "GetCourse", fmt.Sprintf("%d", courseID), func(ctx context.Context) (results.OperationResult[*coursedb.Course, error], error) {
		course, repoErr := s.repo.GetDetail(ctx, nil, courseID)
		if repoErr != nil {
			if errors.Is(repoErr, coursedb.ErrNotFound) {
				return results.FailureResult[*coursedb.Course, error](types.NewNotFoundError("Course not found")), nil
			}
			return results.OperationResult[*coursedb.Course, error]{}, repoErr
		}
		if course.IsArchived() {
			return results.FailureResult[*coursedb.Course, error](types.NewNotFoundError("Course not found")), nil
		}
		return results.SuccessResult[*coursedb.Course, error](course), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func holesFromInput(inputs []HoleInput) []coursedb.Hole {
	holes := make([]coursedb.Hole, 0, len(inputs))
	for _, h := range inputs {
		holes = append(holes, coursedb.Hole{
			Number:   h.Number,
			Par:      h.Par,
			Distance: h.Distance,
			Hcp:      h.Hcp,
		})
	}
	return holes
}

func distancesFromInput(inputs []TeeHoleDistanceInput) []coursedb.TeeHoleDistance {
	distances := make([]coursedb.TeeHoleDistance, 0, len(inputs))
	for _, d := range inputs {
		distances = append(distances, coursedb.TeeHoleDistance{
			HoleNumber: d.HoleNumber,
			Distance:   d.Distance,
		})
	}
	return distances
}

func applyTeeInput(tee *coursedb.CourseTee, input TeeInput) {
	tee.TeeName = input.TeeName
	tee.CourseRating = input.CourseRating
	tee.SlopeRating = input.SlopeRating
	tee.CourseRatingMen = input.CourseRatingMen
	tee.SlopeRatingMen = input.SlopeRatingMen
	tee.CourseRatingWomen = input.CourseRatingWomen
	tee.SlopeRatingWomen = input.SlopeRatingWomen
}
