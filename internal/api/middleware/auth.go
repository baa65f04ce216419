package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aquario/identity-service/internal/core/domain"
	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/pkg/metrics"
)

const identityKey = "identity"

// Authenticate validates the bearer token and stores the caller's
// domain.AuthenticatedContext on the echo context.
//
// Only the signature and expiry are checked; the credential store is never
// consulted, so a token stays usable until it expires.
func Authenticate(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("malformed_header").Inc()
				return domain.ErrInvalidToken
			}

			identityID, err := tokens.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidToken
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(identityKey, domain.AuthenticatedContext{IdentityID: identityID})
			return next(c)
		}
	}
}

// Identity returns the context stored by Authenticate.
func Identity(c echo.Context) (domain.AuthenticatedContext, bool) {
	ac, ok := c.Get(identityKey).(domain.AuthenticatedContext)
	return ac, ok && ac.IdentityID != ""
}
