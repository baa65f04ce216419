package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aquario/identity-service/internal/core/domain"
	"github.com/aquario/identity-service/internal/core/password"
	"github.com/aquario/identity-service/internal/core/ports"
)

func newTestValidator(dir *stubDirectory) *RegistrationValidator {
	return NewRegistrationValidator(password.NewPolicy(true), dir, dir)
}

func intPtr(n int) *int { return &n }

func studentInput() ports.RegisterInput {
	return ports.RegisterInput{
		FullName: "Ana",
		Email:    "ana@x.com",
		Password: "Abcdefg1",
		Role:     string(domain.RoleStudent),
		CenterID: centerCI,
		CourseID: courseCC,
		Term:     intPtr(3),
	}
}

func TestRegistrationValidator_StudentSuccess(t *testing.T) {
	reg, err := newTestValidator(newStubDirectory()).Validate(context.Background(), studentInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s, ok := reg.Enrollment.(domain.Student)
	if !ok {
		t.Fatalf("expected Student enrollment, got %T", reg.Enrollment)
	}
	if s.CourseID != courseCC || s.Term != 3 {
		t.Fatalf("unexpected enrollment %+v", s)
	}
}

func TestRegistrationValidator_NormalizesEmail(t *testing.T) {
	in := studentInput()
	in.Email = "  Ana@X.com "

	reg, err := newTestValidator(newStubDirectory()).Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if reg.Email != "ana@x.com" {
		t.Fatalf("expected normalised email, got %q", reg.Email)
	}
}

func TestRegistrationValidator_Term(t *testing.T) {
	tests := []struct {
		name    string
		term    *int
		wantErr bool
	}{
		{name: "absent", term: nil},
		{name: "first", term: intPtr(1)},
		{name: "last", term: intPtr(20)},
		{name: "zero", term: intPtr(0), wantErr: true},
		{name: "negative", term: intPtr(-1), wantErr: true},
		{name: "too late", term: intPtr(21), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := studentInput()
			in.Term = tt.term

			_, err := newTestValidator(newStubDirectory()).Validate(context.Background(), in)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Issues) != 1 || verr.Issues[0].Field != "periodo" {
				t.Fatalf("expected one issue on periodo, got %+v", verr.Issues)
			}
		})
	}
}

func TestRegistrationValidator_FacultyDropsCourseFields(t *testing.T) {
	in := studentInput()
	in.Role = string(domain.RoleFaculty)
	in.CourseID = courseMath // belongs to another center, still ignored

	reg, err := newTestValidator(newStubDirectory()).Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, ok := reg.Enrollment.(domain.Faculty); !ok {
		t.Fatalf("expected Faculty enrollment, got %T", reg.Enrollment)
	}

	identity := domain.NewIdentity("id-1", reg, "hash", time.Now())
	if identity.CourseID != "" || identity.Term != 0 || identity.Role != domain.RoleFaculty {
		t.Fatalf("faculty identity carries course fields: %+v", identity)
	}
}

func TestRegistrationValidator_StructuralIssues(t *testing.T) {
	in := ports.RegisterInput{
		Email:           "not-an-email",
		Password:        "short",
		Role:            "ADMIN",
		CenterID:        "123",
		CourseID:        "abc",
		ProfileImageURL: "not a url",
		Term:            intPtr(0),
	}

	_, err := newTestValidator(newStubDirectory()).Validate(context.Background(), in)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	fields := map[string]bool{}
	for _, is := range verr.Issues {
		fields[is.Field] = true
	}
	for _, f := range []string{"nome", "email", "senha", "papel", "centroId", "cursoId", "urlFotoPerfil", "periodo"} {
		if !fields[f] {
			t.Errorf("expected an issue for %s, got %+v", f, verr.Issues)
		}
	}
}

func TestRegistrationValidator_PasswordLengthBounds(t *testing.T) {
	for _, pw := range []string{"Abcde1", strings.Repeat("Ab1", 43)} {
		in := studentInput()
		in.Password = pw

		_, err := newTestValidator(newStubDirectory()).Validate(context.Background(), in)

		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("len %d: expected ValidationError, got %v", len(pw), err)
		}
		if verr.Issues[0].Field != "senha" || !strings.Contains(verr.Issues[0].Message, "between 8 and 128") {
			t.Fatalf("len %d: expected length issue, got %+v", len(pw), verr.Issues)
		}
	}
}

func TestRegistrationValidator_BusinessRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		want   error
	}{
		{"unknown center", func(in *ports.RegisterInput) { in.CenterID = unknownUUID }, domain.ErrUnknownCenter},
		{"student without course", func(in *ports.RegisterInput) { in.CourseID = "" }, domain.ErrCourseRequired},
		{"unknown course", func(in *ports.RegisterInput) { in.CourseID = unknownUUID }, domain.ErrUnknownCourse},
		{"course of another center", func(in *ports.RegisterInput) { in.CourseID = courseMath }, domain.ErrCourseCenterMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := studentInput()
			tc.mutate(&in)

			_, err := newTestValidator(newStubDirectory()).Validate(context.Background(), in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var brv *domain.BusinessRuleError
			if !errors.As(err, &brv) {
				t.Fatalf("expected BusinessRuleError, got %T", err)
			}
		})
	}
}

func TestRegistrationValidator_EveryCoursePairing(t *testing.T) {
	dir := newStubDirectory()
	v := newTestValidator(dir)

	for centerID := range dir.centers {
		for courseID, course := range dir.courses {
			in := studentInput()
			in.CenterID = centerID
			in.CourseID = courseID

			_, err := v.Validate(context.Background(), in)
			if course.CenterID == centerID && err != nil {
				t.Errorf("center %s course %s: expected success, got %v", centerID, courseID, err)
			}
			if course.CenterID != centerID && !errors.Is(err, domain.ErrCourseCenterMismatch) {
				t.Errorf("center %s course %s: expected mismatch, got %v", centerID, courseID, err)
			}
		}
	}
}

func TestRegistrationValidator_DirectoryFailure(t *testing.T) {
	dir := newStubDirectory()
	dir.err = domain.ErrStoreUnavailable

	_, err := newTestValidator(dir).Validate(context.Background(), studentInput())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	var brv *domain.BusinessRuleError
	if errors.As(err, &brv) {
		t.Fatalf("transient failure must not look like a business rule")
	}
}
