package auth

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&"

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=5,max=20,alphanum"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
}

type LoginInput struct {
	LoginIdentifier string `json:"loginIdentifier" validate:"notblank"`
	Password        string `json:"password" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	mustRegister(v, "alphaspace", func(fl validator.FieldLevel) bool {
		return isAlphaSpace(fl.Field().String())
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// fieldMessages holds the message per JSON field and failed tag. The empty
// tag is the field's fallback.
var fieldMessages = map[string]map[string]string{
	"username": {
		"":         "Username must be between 5 and 20 characters",
		"alphanum": "Username must be alphanumeric",
	},
	"email": {
		"":    "Must be a valid email address",
		"max": "Email must be at most 255 characters",
	},
	"password": {
		"": "Password must be at least 8 characters long",
		"strongpassword": "Password must contain at least one uppercase letter, one lowercase letter, " +
			"one number, and one special character",
	},
	"loginIdentifier": {
		"": "Login identifier is required",
	},
	"first_name": {
		"":           "Must be at most 50 characters",
		"alphaspace": "Must contain only letters and spaces",
	},
	"last_name": {
		"":           "Must be at most 50 characters",
		"alphaspace": "Must contain only letters and spaces",
	},
	"bio":                  {"": "Bio must be at most 500 characters"},
	"city":                 {"": "City must be at most 100 characters"},
	"pincode":              {"": "Pincode must be exactly 6 digits"},
	"general_availability": {"": "General availability must be at most 255 characters"},
}

func validateRegisterInput(in RegisterInput) []FieldError {
	return fieldErrors(validate.Struct(in))
}

func validateLoginInput(in LoginInput) []FieldError {
	errs := fieldErrors(validate.Struct(in))
	for i := range errs {
		if errs[i].Field == "password" {
			errs[i].Message = "Password is required"
		}
	}
	return errs
}

func validateProfileUpdate(u ProfileUpdate) []FieldError {
	return fieldErrors(validate.Struct(u))
}

// fieldErrors converts validator output into FieldErrors in struct field
// order. It returns an empty, non-nil slice when err is nil.
func fieldErrors(err error) []FieldError {
	errs := []FieldError{}
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(errs, FieldError{Message: err.Error()})
	}

	for _, fe := range verrs {
		messages := fieldMessages[fe.Field()]
		message, ok := messages[fe.Tag()]
		if !ok {
			message = messages[""]
		}
		if message == "" {
			message = fe.Error()
		}
		errs = append(errs, FieldError{Field: fe.Field(), Message: message})
	}
	return errs
}

func isAlphaSpace(s string) bool {
	for _, r := range s {
		if !isASCIILetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

// isStrongPassword requires a lower, upper, digit and special character and
// rejects anything outside that alphabet.
func isStrongPassword(p string) bool {
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
