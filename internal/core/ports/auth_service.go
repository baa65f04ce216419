package ports

import (
	"context"

	"github.com/aquario/identity-service/internal/core/domain"
)

// RegisterInput is a raw registration request. Field names in json tags are
// the names callers use on the wire and in validation issues.
type RegisterInput struct {
	FullName        string `json:"nome"          validate:"required,max=120"`
	Email           string `json:"email"         validate:"required,email,max=254"`
	Password        string `json:"senha"         validate:"required"`
	Role            string `json:"papel"         validate:"required,oneof=DISCENTE DOCENTE"`
	CenterID        string `json:"centroId"      validate:"required,uuid"`
	Bio             string `json:"bio"           validate:"omitempty,max=500"`
	ProfileImageURL string `json:"urlFotoPerfil" validate:"omitempty,url,max=2048"`
	CourseID        string `json:"cursoId"       validate:"omitempty,uuid"`
	Term            *int   `json:"periodo"       validate:"omitnil,gte=1,lte=20"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token    domain.AuthToken
	Identity *domain.Identity
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, identityID string) (*domain.Identity, error)
}
