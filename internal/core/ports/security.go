package ports

import (
	"context"
	"time"

	"github.com/aquario/identity-service/internal/core/domain"
)

// PasswordHasher hashes and checks passwords with a slow, salted algorithm.
// Compare returns domain.ErrInvalidCredentials when password does not match.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}

// TokenIssuer mints and verifies bearer tokens. Verify reports every
// failure as domain.ErrInvalidToken.
type TokenIssuer interface {
	Issue(identityID string) (domain.AuthToken, error)
	Verify(token string) (string, error)
}

// CounterStore keeps fixed-window request counters. Increment atomically
// adds one to key, starting a new window of the given length when none is
// open, and returns the new count and the time left in the window.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}
