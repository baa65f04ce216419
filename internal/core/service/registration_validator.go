package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aquario/identity-service/internal/core/domain"
	"github.com/aquario/identity-service/internal/core/password"
	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/pkg/validation"
)

// RegistrationValidator turns a raw RegisterInput into a domain.Registration.
//
// Structural problems (missing fields, bad email, weak password) are all
// reported together as a *domain.ValidationError. Cross-field problems that
// need the directories (unknown center, course outside the center) come back
// as a *domain.BusinessRuleError.
type RegistrationValidator struct {
	v       *validator.Validate
	policy  password.Policy
	centers ports.CenterDirectory
	courses ports.CourseDirectory
}

func NewRegistrationValidator(policy password.Policy, centers ports.CenterDirectory, courses ports.CourseDirectory) *RegistrationValidator {
	return &RegistrationValidator{
		v:       validation.New(),
		policy:  policy,
		centers: centers,
		courses: courses,
	}
}

func (rv *RegistrationValidator) Validate(ctx context.Context, in ports.RegisterInput) (domain.Registration, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = domain.NormalizeEmail(in.Email)

	if err := rv.validateStructure(in); err != nil {
		return domain.Registration{}, err
	}

	if _, err := rv.centers.FindCenter(ctx, in.CenterID); err != nil {
		if errors.Is(err, domain.ErrCenterNotFound) {
			return domain.Registration{}, domain.ErrUnknownCenter
		}
		return domain.Registration{}, fmt.Errorf("lookup center: %w", err)
	}

	reg := domain.Registration{
		FullName:        in.FullName,
		Email:           in.Email,
		Password:        in.Password,
		CenterID:        in.CenterID,
		Bio:             in.Bio,
		ProfileImageURL: in.ProfileImageURL,
	}

	switch domain.Role(in.Role) {
	case domain.RoleFaculty:
		reg.Enrollment = domain.Faculty{}
	case domain.RoleStudent:
		enrollment, err := rv.studentEnrollment(ctx, in)
		if err != nil {
			return domain.Registration{}, err
		}
		reg.Enrollment = enrollment
	}

	return reg, nil
}

func (rv *RegistrationValidator) validateStructure(in ports.RegisterInput) error {
	verr := &domain.ValidationError{}

	if err := validation.Struct(rv.v, in); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		verr.Issues = append(verr.Issues, ve.Issues...)
	}

	// An empty password already has its "required" issue.
	if in.Password != "" {
		if err := rv.policy.Validate("senha", in.Password); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				verr.Issues = append(verr.Issues, ve.Issues...)
			}
		}
	}

	return verr.OrNil()
}

func (rv *RegistrationValidator) studentEnrollment(ctx context.Context, in ports.RegisterInput) (domain.Student, error) {
	if in.CourseID == "" {
		return domain.Student{}, domain.ErrCourseRequired
	}

	course, err := rv.courses.FindCourse(ctx, in.CourseID)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return domain.Student{}, domain.ErrUnknownCourse
		}
		return domain.Student{}, fmt.Errorf("lookup course: %w", err)
	}
	if course.CenterID != in.CenterID {
		return domain.Student{}, domain.ErrCourseCenterMismatch
	}

	s := domain.Student{CourseID: course.ID}
	if in.Term != nil {
		s.Term = *in.Term
	}
	return s, nil
}
