package domain

import (
	"strings"
	"time"
)

// Role is the academic role an identity registers with. The values match the
// role enum the platform already stores.
type Role string

const (
	RoleStudent Role = "DISCENTE"
	RoleFaculty Role = "DOCENTE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// Identity models a registered user of the platform.
// CourseID and Term are only ever set for students.
type Identity struct {
	ID              string
	FullName        string
	Email           string
	PasswordHash    string `json:"-"`
	Role            Role
	CenterID        string
	Bio             string
	ProfileImageURL string
	CourseID        string
	Term            int
	CreatedAt       time.Time
}

// NormalizeEmail is the form emails are compared and stored in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthenticatedContext is what the authentication gate attaches to a request
// once its bearer token verified.
type AuthenticatedContext struct {
	IdentityID string
}

// AuthToken is a signed bearer credential. It has no persisted form.
type AuthToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
