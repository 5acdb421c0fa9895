// Package service implements the business operations of the PageTurn server:
// credential management, session authentication, catalog queries, and review
// aggregation.
package service

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := 0; i < len(name); i++ {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// formatValidationError converts validator errors to user-friendly domain
// errors. Username and password failures get their dedicated codes so the
// boundary can message them the way the registration form expects.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if domainerrors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := e.Field()

			switch field {
			case "username":
				switch e.Tag() {
				case "required":
					return domainerrors.InvalidUsername("must enter a valid username")
				case "max":
					return domainerrors.InvalidUsername("username must not exceed " + e.Param() + " characters")
				case "excludes":
					return domainerrors.InvalidUsername("username cannot contain @ symbol")
				default:
					return domainerrors.InvalidUsername("invalid username")
				}
			case "password":
				if e.Tag() == "required" {
					return domainerrors.InvalidPassword("must enter a password")
				}
				return domainerrors.InvalidPassword("invalid password")
			}

			switch e.Tag() {
			case "required":
				return domainerrors.Validationf("%s is required", field)
			case "email":
				return domainerrors.Validationf("%s must be a valid email address", field)
			case "max":
				return domainerrors.Validationf("%s exceeds maximum length of %s characters", field, e.Param())
			default:
				return domainerrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}
