// Package validation wraps go-playground/validator with conversion of field
// errors into the application's error taxonomy.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/foodgramapp/foodgram/internal/apperror"
)

// Validator validates request structs declared with `validate` tags and
// reports failures as apperror validation errors using JSON field names.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our request DTOs.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages, so the client sees the field
	// name it actually sent ("cooking_time", not "CookingTime").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if idx := strings.IndexByte(name, ','); idx >= 0 {
			name = name[:idx]
		}
		if name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns an apperror validation error for
// the first failing field, or nil.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	e := validationErrs[0]
	return apperror.ValidationFailed(e.Field(), fmt.Sprintf("%s %s", e.Field(), friendlyMessage(e)))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "hexcolor":
		return "must be a hex color code"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
