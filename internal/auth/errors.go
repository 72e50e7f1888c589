package auth

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Stable machine-readable failure codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeAccountSuspended   = "ACCOUNT_SUSPENDED"
	CodeAccountBanned      = "ACCOUNT_BANNED"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeStatusUnrecognized = "ACCOUNT_STATUS_UNRECOGNIZED"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeInternal           = "INTERNAL"
)

const (
	fieldsKey               = "fields"
	internalFailureMessage  = "Something went wrong. Please try again later."
	invalidCredentialsMsg   = "Invalid credentials."
	validationFailedMessage = "Validation failed."
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrTokenInvalid    = errors.New("invalid session token")
	ErrTokenExpired    = errors.New("session token expired")
)

// Class is the HTTP-status-equivalent category of a failure.
type Class int

const (
	ClassValidation      Class = 400
	ClassUnauthenticated Class = 401
	ClassForbidden       Class = 403
	ClassNotFound        Class = 404
	ClassConflict        Class = 409
	ClassInternal        Class = 500
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Failure is the transport-neutral shape of an error returned by the service.
type Failure struct {
	Class   Class
	Code    string
	Message string
	Fields  []FieldError
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Classify turns any error returned by this package into a Failure.
// Errors without a known code are reported as INTERNAL and their text is not
// exposed.
func Classify(err error) Failure {
	internal := Failure{Class: ClassInternal, Code: CodeInternal, Message: internalFailureMessage}
	if err == nil {
		return internal
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return internal
	}

	code := fmt.Sprint(oopsErr.Code())
	class, known := classOf(code)
	if !known {
		return internal
	}

	f := Failure{Class: class, Code: code, Message: oopsErr.Public()}
	if f.Message == "" {
		f.Message = internalFailureMessage
	}
	if fields, ok := oopsErr.Context()[fieldsKey].([]FieldError); ok {
		f.Fields = fields
	}
	return f
}

func classOf(code string) (Class, bool) {
	switch code {
	case CodeValidationFailed:
		return ClassValidation, true
	case CodeInvalidCredentials, CodeTokenMissing, CodeTokenInvalid, CodeTokenExpired:
		return ClassUnauthenticated, true
	case CodeEmailNotVerified, CodeAccountSuspended, CodeAccountBanned,
		CodeAccountDeactivated, CodeStatusUnrecognized:
		return ClassForbidden, true
	case CodeAccountNotFound:
		return ClassNotFound, true
	case CodeUserExists:
		return ClassConflict, true
	case CodePersistenceFailure, CodeInternal:
		return ClassInternal, true
	}
	return 0, false
}

func validationFailed(fields []FieldError) error {
	return oops.Code(CodeValidationFailed).
		Public(validationFailedMessage).
		With(fieldsKey, fields).
		Errorf("validation failed on %d field(s)", len(fields))
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).
		Public(invalidCredentialsMsg).
		Errorf("invalid credentials")
}

func userExists(fields []FieldError) error {
	return oops.Code(CodeUserExists).
		Public("User already exists.").
		With(fieldsKey, fields).
		Wrap(ErrAccountExists)
}

func accountNotFound(id fmt.Stringer) error {
	return oops.Code(CodeAccountNotFound).
		Public("User not found.").
		With("user_id", id.String()).
		Wrap(ErrAccountNotFound)
}

func persistenceFailure(operation string, err error) error {
	return oops.Code(CodePersistenceFailure).
		Public(internalFailureMessage).
		With("operation", operation).
		Wrap(err)
}

func internalFailure(operation string, err error) error {
	return oops.Code(CodeInternal).
		Public(internalFailureMessage).
		With("operation", operation).
		Wrap(err)
}
