package courseservice

import (
	"context"

	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
)

// ------------------------
// Fake Course Repo
// ------------------------

type FakeCourseRepo struct {
	trace []string

	CreateFunc               func(ctx context.Context, db bun.IDB, course *coursedb.Course) error
	GetByIDFunc              func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error)
	GetDetailFunc            func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error)
	ListFunc                 func(ctx context.Context, db bun.IDB) ([]coursedb.Course, error)
	UpdateFunc               func(ctx context.Context, db bun.IDB, course *coursedb.Course) error
	ArchiveFunc              func(ctx context.Context, db bun.IDB, id int64) error
	ReplaceHolesFunc         func(ctx context.Context, db bun.IDB, courseID int64, holes []coursedb.Hole) error
	GetTeesFunc              func(ctx context.Context, db bun.IDB, courseID int64) ([]coursedb.CourseTee, error)
	InsertTeeFunc            func(ctx context.Context, db bun.IDB, tee *coursedb.CourseTee) error
	UpdateTeeFunc            func(ctx context.Context, db bun.IDB, tee *coursedb.CourseTee) error
	DeleteTeesFunc           func(ctx context.Context, db bun.IDB, teeIDs []int64) error
	ReplaceTeeDistancesFunc  func(ctx context.Context, db bun.IDB, teeID int64, distances []coursedb.TeeHoleDistance) error
	HasUncompletedRoundsFunc func(ctx context.Context, db bun.IDB, courseID int64) (bool, error)
	AnyTeeInUseFunc          func(ctx context.Context, db bun.IDB, teeIDs []int64) (bool, error)
}

func NewFakeCourseRepo() *FakeCourseRepo {
	return &FakeCourseRepo{
		trace: []string{},
	}
}

func (f *FakeCourseRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeCourseRepo) Create(ctx context.Context, db bun.IDB, course *coursedb.Course) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, course)
	}
	course.ID = 1
	return nil
}

func (f *FakeCourseRepo) GetByID(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, coursedb.ErrNotFound
}

func (f *FakeCourseRepo) GetDetail(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
	f.record("GetDetail")
	if f.GetDetailFunc != nil {
		return f.GetDetailFunc(ctx, db, id)
	}
	return nil, coursedb.ErrNotFound
}

func (f *FakeCourseRepo) List(ctx context.Context, db bun.IDB) ([]coursedb.Course, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return []coursedb.Course{}, nil
}

func (f *FakeCourseRepo) Update(ctx context.Context, db bun.IDB, course *coursedb.Course) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, course)
	}
	return nil
}

func (f *FakeCourseRepo) Archive(ctx context.Context, db bun.IDB, id int64) error {
	f.record("Archive")
	if f.ArchiveFunc != nil {
		return f.ArchiveFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeCourseRepo) ReplaceHoles(ctx context.Context, db bun.IDB, courseID int64, holes []coursedb.Hole) error {
	f.record("ReplaceHoles")
	if f.ReplaceHolesFunc != nil {
		return f.ReplaceHolesFunc(ctx, db, courseID, holes)
	}
	return nil
}

func (f *FakeCourseRepo) GetTees(ctx context.Context, db bun.IDB, courseID int64) ([]coursedb.CourseTee, error) {
	f.record("GetTees")
	if f.GetTeesFunc != nil {
		return f.GetTeesFunc(ctx, db, courseID)
	}
	return []coursedb.CourseTee{}, nil
}

func (f *FakeCourseRepo) InsertTee(ctx context.Context, db bun.IDB, tee *coursedb.CourseTee) error {
	f.record("InsertTee")
	if f.InsertTeeFunc != nil {
		return f.InsertTeeFunc(ctx, db, tee)
	}
	tee.ID = 1
	return nil
}

func (f *FakeCourseRepo) UpdateTee(ctx context.Context, db bun.IDB, tee *coursedb.CourseTee) error {
	f.record("UpdateTee")
	if f.UpdateTeeFunc != nil {
		return f.UpdateTeeFunc(ctx, db, tee)
	}
	return nil
}

func (f *FakeCourseRepo) DeleteTees(ctx context.Context, db bun.IDB, teeIDs []int64) error {
	f.record("DeleteTees")
	if f.DeleteTeesFunc != nil {
		return f.DeleteTeesFunc(ctx, db, teeIDs)
	}
	return nil
}

func (f *FakeCourseRepo) ReplaceTeeDistances(ctx context.Context, db bun.IDB, teeID int64, distances []coursedb.TeeHoleDistance) error {
	f.record("ReplaceTeeDistances")
	if f.ReplaceTeeDistancesFunc != nil {
		return f.ReplaceTeeDistancesFunc(ctx, db, teeID, distances)
	}
	return nil
}

func (f *FakeCourseRepo) HasUncompletedRounds(ctx context.Context, db bun.IDB, courseID int64) (bool, error) {
	f.record("HasUncompletedRounds")
	if f.HasUncompletedRoundsFunc != nil {
		return f.HasUncompletedRoundsFunc(ctx, db, courseID)
	}
	return false, nil
}

func (f *FakeCourseRepo) AnyTeeInUse(ctx context.Context, db bun.IDB, teeIDs []int64) (bool, error) {
	f.record("AnyTeeInUse")
	if f.AnyTeeInUseFunc != nil {
		return f.AnyTeeInUseFunc(ctx, db, teeIDs)
	}
	return false, nil
}

// --- Accessors for assertions ---

func (f *FakeCourseRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ coursedb.Repository = (*FakeCourseRepo)(nil)
