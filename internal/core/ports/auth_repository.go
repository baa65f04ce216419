package ports

import (
	"context"

	"github.com/aquario/identity-service/internal/core/domain"
)

// CredentialStore persists identity records.
//
// Lookups by email are case-insensitive: implementations compare the
// normalised (trimmed, lower-cased) address. Create must enforce email
// uniqueness itself and report a violation as domain.ErrDuplicateEmail.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
