package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/aquario/identity-service/internal/pkg/validation"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

// Validate satisfies the echo.Validator interface. Failures come back as a
// *domain.ValidationError so the error handler renders them as issues.
func (ev *echoValidator) Validate(i any) error {
	return validation.Struct(ev.v, i)
}
