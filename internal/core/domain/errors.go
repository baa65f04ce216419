package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRateLimited        = errors.New("too many requests")
	ErrCenterNotFound     = errors.New("center not found")
	ErrCourseNotFound     = errors.New("course not found")

	// ErrStoreUnavailable marks a transient storage failure (timeout,
	// unreachable server). Callers may retry.
	ErrStoreUnavailable = errors.New("storage temporarily unavailable")
)

// Issue is a single structural problem with one input field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every structural problem found in an input.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// Add records an issue for field.
func (e *ValidationError) Add(field, message string) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: message})
}

// OrNil returns e when it holds at least one issue, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// BusinessRuleError is a well-formed request that breaks a business rule,
// e.g. a course outside the chosen center or an email already in use.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

var (
	ErrDuplicateEmail       = &BusinessRuleError{Rule: "duplicate_email", Message: "email is already registered (duplicate account)"}
	ErrUnknownCenter        = &BusinessRuleError{Rule: "unknown_center", Message: "center does not exist"}
	ErrCourseRequired       = &BusinessRuleError{Rule: "course_required", Message: "students must choose a course"}
	ErrUnknownCourse        = &BusinessRuleError{Rule: "unknown_course", Message: "course does not exist"}
	ErrCourseCenterMismatch = &BusinessRuleError{Rule: "course_center_mismatch", Message: "course does not belong to the selected center"}
)
