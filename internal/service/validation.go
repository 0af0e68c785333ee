package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mobile-auth/internal/password"
)

var validate = newValidator()

// fieldMessages are the user-facing messages per json field.
var fieldMessages = map[string]string{
	"email":            "Valid email is required",
	"password":         "Password must be at least 8 characters",
	"full_name":        "Full name must be at least 2 characters",
	"current_password": "Current password is required",
	"new_password":     "New password must be at least 8 characters",
}

// tagMessages override fieldMessages for a specific field and failed tag.
var tagMessages = map[string]string{
	"password.bcryptmax":     "Password must be at most 72 bytes",
	"new_password.bcryptmax": "New password must be at most 72 bytes",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// max counts runes; bcrypt's limit is in bytes.
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= password.MaxLength
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = fieldMessages[fe.Field()]
		}
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
