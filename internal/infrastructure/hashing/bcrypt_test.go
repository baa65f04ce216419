package hashing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/aquario/identity-service/internal/core/domain"
)

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "Abcdefg1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "Abcdefg1" || !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash %q", hash)
	}

	if err := h.Compare(ctx, hash, "Abcdefg1"); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if err := h.Compare(ctx, hash, "Abcdefg2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBcrypt_LongPasswordsKeepEntropy(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	ctx := context.Background()

	base := strings.Repeat("a", 100)
	hash, err := h.Hash(ctx, base+"X")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Compare(ctx, hash, base+"Y"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected passwords differing after byte 72 to mismatch, got %v", err)
	}
}

func TestBcrypt_SaltsEachHash(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)
	a, _ := h.Hash(context.Background(), "Abcdefg1")
	b, _ := h.Hash(context.Background(), "Abcdefg1")
	if a == b {
		t.Fatalf("expected distinct salted hashes")
	}
}

func TestNewBcrypt_FallsBackToDefaultCost(t *testing.T) {
	if got := NewBcrypt(99).cost; got != DefaultCost {
		t.Fatalf("expected DefaultCost, got %d", got)
	}
}

func TestBcrypt_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBcrypt(bcrypt.MinCost).Hash(ctx, "Abcdefg1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
