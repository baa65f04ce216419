package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aquario/identity-service/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

var ErrMissingSigningSecret = errors.New("token issuer: signing secret is empty")

// JWTIssuer issues HS256 JWTs carrying the identity id as subject.
// Tokens are never stored; validity is signature, issuer and expiry only.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTIssuer(secret, issuer string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSigningSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	i := &JWTIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(issuer),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
	)
	return i, nil
}

// TTL is the lifetime of issued tokens.
func (i *JWTIssuer) TTL() time.Duration { return i.ttl }

func (i *JWTIssuer) Issue(identityID string) (domain.AuthToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.issuer,
		Subject:   identityID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return domain.AuthToken{}, fmt.Errorf("sign token: %w", err)
	}

	return domain.AuthToken{Value: signed, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify returns the subject of a valid token. Malformed, tampered,
// expired and foreign tokens all yield domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := i.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
