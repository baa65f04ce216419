package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aquario/identity-service/internal/api/middleware"
	"github.com/aquario/identity-service/internal/core/domain"
	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/pkg/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// loginRequest accepts the password under "senha" or "password".
type loginRequest struct {
	Email    string `json:"email"    validate:"max=254"`
	Senha    string `json:"senha"    validate:"max=1024"`
	Password string `json:"password" validate:"max=1024"`
}

func (r loginRequest) secret() string {
	if r.Senha != "" {
		return r.Senha
	}
	return r.Password
}

type identityResponse struct {
	ID       string      `json:"id"`
	FullName string      `json:"nome"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"papel"`
	CenterID string      `json:"centroId"`
	CourseID string      `json:"cursoId,omitempty"`
	Term     int         `json:"periodo,omitempty"`
}

type profileResponse struct {
	identityResponse
	Bio             string    `json:"bio"`
	ProfileImageURL string    `json:"urlFotoPerfil"`
	CreatedAt       time.Time `json:"criadoEm"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Usuario   identityResponse `json:"usuario"`
}

func toIdentityResponse(u *domain.Identity) identityResponse {
	return identityResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		CenterID: u.CenterID,
		CourseID: u.CourseID,
		Term:     u.Term,
	}
}

// Register creates a new identity.
//
// @Summary      Register a new identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegisterInput  true  "Registration details"
// @Success      201
// @Failure      400   {object}  api.errorResponse
// @Failure      409   {object}  api.errorResponse
// @Failure      429   {object}  api.errorResponse
// @Failure      503   {object}  api.errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterInput
	if err := bind(c, &req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	if _, err := h.authService.Register(c.Request().Context(), req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.NoContent(http.StatusCreated)
}

func registrationResult(err error) string {
	var verr *domain.ValidationError
	var rule *domain.BusinessRuleError
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	case errors.As(err, &rule):
		return "rejected"
	default:
		return "error"
	}
}

// Login authenticates an identity and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      429   {object}  api.errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.secret())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token.Value,
		ExpiresAt: res.Token.ExpiresAt,
		Usuario:   toIdentityResponse(res.Identity),
	})
}

// Me returns the profile of the authenticated caller.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  profileResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      404   {object}  api.errorResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	ac, ok := middleware.Identity(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	u, err := h.authService.Profile(c.Request().Context(), ac.IdentityID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		identityResponse: toIdentityResponse(u),
		Bio:              u.Bio,
		ProfileImageURL:  u.ProfileImageURL,
		CreatedAt:        u.CreatedAt,
	})
}
