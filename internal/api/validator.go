package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// requestValidator adapts go-playground/validator to echo.Validator and
// registers the "mediaurl" tag backed by the server's URL policy.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator(policy urlPolicy) *requestValidator {
	v := validator.New()
	_ = v.RegisterValidation("mediaurl", func(fl validator.FieldLevel) bool {
		_, ok := policy.Normalize(fl.Field().String())
		return ok
	})
	return &requestValidator{validate: v}
}

func (rv *requestValidator) Validate(i any) error {
	return rv.validate.Struct(i)
}

// failedTag returns the first validation tag that failed, or "" when err is
// not a validation error.
func failedTag(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}
