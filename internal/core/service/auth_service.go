package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aquario/identity-service/internal/core/domain"
	"github.com/aquario/identity-service/internal/core/ports"
)

// dummyHash is compared against when a login names an unknown email so both
// failure paths cost one hash comparison.
const dummyHash = "$2a$11$C6UzMDM.H6dfI/f/IKcEeO5W0v1x5zJ4a6fFYc9p8N6QGdZ2aG8W."

// AuthService implements registration, login and profile lookup.
type AuthService struct {
	validator *RegistrationValidator
	store     ports.CredentialStore
	hasher    ports.PasswordHasher
	tokens    ports.TokenIssuer
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAuthService(
	validator *RegistrationValidator,
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		validator: validator,
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Register validates in, hashes the password and creates the identity.
//
// The email pre-check only gives a fast answer; the store's unique index is
// what guarantees a single record per email under concurrent submissions.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	reg, err := s.validator.Validate(ctx, in)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, reg.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("register: check email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, reg.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	identity := domain.NewIdentity(s.newID(), reg, hash, s.now().UTC())

	// The insert must not be torn down if the client goes away.
	created, err := s.store.Create(context.WithoutCancel(ctx), identity)
	if err != nil {
		return nil, fmt.Errorf("register: create identity: %w", err)
	}

	s.log.Info().
		Str("identity_id", created.ID).
		Str("email", created.Email).
		Str("role", string(created.Role)).
		Str("center_id", created.CenterID).
		Msg("identity registered")

	return created, nil
}

// Login checks email and password and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			_ = s.hasher.Compare(ctx, dummyHash, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: find identity: %w", err)
	}

	if err := s.hasher.Compare(ctx, identity.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: compare password: %w", err)
	}

	token, err := s.tokens.Issue(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("identity_id", identity.ID).Msg("login succeeded")

	return &ports.LoginResult{Token: token, Identity: identity}, nil
}

// Profile returns the identity behind an authenticated request.
func (s *AuthService) Profile(ctx context.Context, identityID string) (*domain.Identity, error) {
	identity, err := s.store.FindByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return identity, nil
}
