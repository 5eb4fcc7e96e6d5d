package handler

import (
	"github.com/recordhub/records-system/internal/core/validation"
)

// echoValidator lets Echo call c.Validate(req); failures come back as
// *domain.ValidationError so the error handler can list every field.
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
