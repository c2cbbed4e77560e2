// Package validation validates service inputs using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/go-playground/validator/v10"
)

// usernamePattern allows letters, digits and the separators . _ -.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	// The message names the first failing field so forms can show it as is.
	first := validationErrs[0]
	msg := first.Field() + " " + fieldErrors[first.Field()]

	return domainerrors.ValidationWithDetails(msg, fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "username":
		return "may only contain letters, digits, '.', '_' and '-'"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
