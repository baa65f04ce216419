package domain

import "time"

// Enrollment is the role-specific part of a registration. Exactly one of
// Student or Faculty.
type Enrollment interface {
	Role() Role
	enrollment()
}

// Student enrollment always names a course of the registration's center.
// Term is zero when the student did not provide one.
type Student struct {
	CourseID string
	Term     int
}

func (Student) Role() Role { return RoleStudent }
func (Student) enrollment() {}

// Faculty members carry no course.
type Faculty struct{}

func (Faculty) Role() Role  { return RoleFaculty }
func (Faculty) enrollment() {}

// Registration is a registration request that passed structural and
// cross-field validation.
type Registration struct {
	FullName        string
	Email           string
	Password        string
	CenterID        string
	Bio             string
	ProfileImageURL string
	Enrollment      Enrollment
}

// NewIdentity builds the record to persist for reg. Course fields are copied
// only for student enrollments.
func NewIdentity(id string, reg Registration, passwordHash string, now time.Time) *Identity {
	identity := &Identity{
		ID:              id,
		FullName:        reg.FullName,
		Email:           reg.Email,
		PasswordHash:    passwordHash,
		Role:            reg.Enrollment.Role(),
		CenterID:        reg.CenterID,
		Bio:             reg.Bio,
		ProfileImageURL: reg.ProfileImageURL,
		CreatedAt:       now,
	}
	if s, ok := reg.Enrollment.(Student); ok {
		identity.CourseID = s.CourseID
		identity.Term = s.Term
	}
	return identity
}
