package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aquario/identity-service/internal/core/domain"
)

func TestIdentityDoc_RoundTrip(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	in := &domain.Identity{
		ID:           "id-1",
		FullName:     "Ana",
		Email:        " Ana@X.com",
		PasswordHash: "hash",
		Role:         domain.RoleStudent,
		CenterID:     "center",
		CourseID:     "course",
		Term:         2,
		CreatedAt:    created,
	}

	doc := toIdentityDoc(in)
	if doc.Email != "ana@x.com" {
		t.Fatalf("expected stored email to be normalised, got %q", doc.Email)
	}

	out := fromIdentityDoc(doc)
	if out.CourseID != "course" || out.Term != 2 || out.Role != domain.RoleStudent || !out.CreatedAt.Equal(created) {
		t.Fatalf("unexpected identity %+v", out)
	}
}

func TestStoreError_MarksTimeoutsUnavailable(t *testing.T) {
	err := storeError("find identity", fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the cause to stay reachable")
	}

	other := storeError("find identity", errors.New("boom"))
	if errors.Is(other, domain.ErrStoreUnavailable) {
		t.Fatalf("plain failures must not be marked unavailable")
	}
}
