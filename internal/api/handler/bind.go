package handler

import (
	"encoding/json"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/aquario/identity-service/internal/core/domain"
)

// bind decodes the request into dst. Decoding failures are reported as a
// validation issue on the offending field, or on "body" when the payload is
// not JSON at all.
func bind(c echo.Context, dst any) error {
	err := c.Bind(dst)
	if err == nil {
		return nil
	}

	verr := &domain.ValidationError{}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		verr.Add(ute.Field, ute.Field+" has the wrong type, expected "+ute.Type.String())
		return verr
	}
	verr.Add("body", "request body must be a valid JSON object")
	return verr
}
