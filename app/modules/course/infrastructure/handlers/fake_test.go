package coursehandlers

import (
	"context"
	"errors"

	courseservice "github.com/fairway-collective/links-backend/app/modules/course/application"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
)

// FakeService is a programmable courseservice.Service.
type FakeService struct {
	CreateCourseFunc func(ctx context.Context, callerID int64, input courseservice.CourseInput) (*coursedb.Course, error)
	UpdateCourseFunc func(ctx context.Context, callerID int64, courseID int64, input courseservice.CourseInput) (*coursedb.Course, error)
	DeleteCourseFunc func(ctx context.Context, callerID int64, courseID int64) error
	ListCoursesFunc  func(ctx context.Context) ([]coursedb.Course, error)
	GetCourseFunc    func(ctx context.Context, courseID int64) (*coursedb.Course, error)
}

func (f *FakeService) CreateCourse(ctx context.Context, callerID int64, input courseservice.CourseInput) (*coursedb.Course, error) {
	if f.CreateCourseFunc != nil {
		return f.CreateCourseFunc(ctx, callerID, input)
	}
	return nil, errors.New("CreateCourseFunc not set")
}

func (f *FakeService) UpdateCourse(ctx context.Context, callerID int64, courseID int64, input courseservice.CourseInput) (*coursedb.Course, error) {
	if f.UpdateCourseFunc != nil {
		return f.UpdateCourseFunc(ctx, callerID, courseID, input)
	}
	return nil, errors.New("UpdateCourseFunc not set")
}

func (f *FakeService) DeleteCourse(ctx context.Context, callerID int64, courseID int64) error {
	if f.DeleteCourseFunc != nil {
		return f.DeleteCourseFunc(ctx, callerID, courseID)
	}
	return nil
}

func (f *FakeService) ListCourses(ctx context.Context) ([]coursedb.Course, error) {
	if f.ListCoursesFunc != nil {
		return f.ListCoursesFunc(ctx)
	}
	return []coursedb.Course{}, nil
}

func (f *FakeService) GetCourse(ctx context.Context, courseID int64) (*coursedb.Course, error) {
	if f.GetCourseFunc != nil {
		return f.GetCourseFunc(ctx, courseID)
	}
	return nil, errors.New("GetCourseFunc not set")
}

var _ courseservice.Service = (*FakeService)(nil)
