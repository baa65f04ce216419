package ports

import (
	"context"

	"github.com/aquario/identity-service/internal/core/domain"
)

// CenterDirectory gives read access to academic centers.
// FindCenter returns domain.ErrCenterNotFound for unknown ids.
type CenterDirectory interface {
	FindCenter(ctx context.Context, id string) (*domain.Center, error)
	ListCenters(ctx context.Context) ([]domain.Center, error)
}

// CourseDirectory gives read access to courses.
// FindCourse returns domain.ErrCourseNotFound for unknown ids.
type CourseDirectory interface {
	FindCourse(ctx context.Context, id string) (*domain.Course, error)
	ListCoursesByCenter(ctx context.Context, centerID string) ([]domain.Course, error)
}
