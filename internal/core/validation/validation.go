// Package validation runs struct tag constraints and reports failures as a
// *domain.ValidationError keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/recordhub/records-system/internal/core/domain"
)

// Validator wraps go-playground/validator with the project's field naming.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(dateValue, domain.Date{})
	return &Validator{v: v}
}

// Struct validates s and returns nil or a *domain.ValidationError.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range ve {
		field := fieldPath(fe.Namespace())
		out.Add(field, message(field, fe))
	}
	return out
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func dateValue(v reflect.Value) any {
	d, ok := v.Interface().(domain.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time
}

// fieldPath drops the root type and embedded struct names from a namespace,
// leaving the dotted JSON path ("personalDetails.firstName").
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	kept := parts[:0]
	for _, p := range parts[1:] {
		if p == "" || (p[0] >= 'A' && p[0] <= 'Z') {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "mongodb":
		return field + " must be a valid id"
	case "gte", "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
