// Package hashing provides the bcrypt implementation of ports.PasswordHasher.
package hashing

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/aquario/identity-service/internal/core/domain"
)

// DefaultCost lands around 100ms per hash on current server CPUs.
const DefaultCost = 11

// Bcrypt hashes passwords with bcrypt. Passwords are first reduced to a
// base64 SHA-256 digest so inputs longer than bcrypt's 72 byte limit keep
// all of their entropy.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher using cost, or DefaultCost when cost is outside
// bcrypt's accepted range.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func (b *Bcrypt) Compare(ctx context.Context, hash, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrInvalidCredentials
	default:
		return fmt.Errorf("bcrypt compare: %w", err)
	}
}

func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
