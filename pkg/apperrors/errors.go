// Package apperrors defines the error taxonomy shared by services and
// handlers. Sentinel errors cover the authorization and not-found cases;
// ValidationError carries the per-field machine-readable codes returned
// to API clients.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// ValidationError reports a single offending request field. Code is a
// stable upper-snake identifier (MISSING_SYMBOL, INVALID_MODEL_TYPE, ...)
// that clients can match on; Message is human-readable.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError,
// returning it when so.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// fieldCode converts a json field name to its code fragment:
// "model_type" -> "MODEL_TYPE".
func fieldCode(field string) string {
	return strings.ToUpper(field)
}

// MissingField is returned when a required field is absent, empty, or
// whitespace-only.
func MissingField(field string) *ValidationError {
	return &ValidationError{
		Code:    "MISSING_" + fieldCode(field),
		Message: fmt.Sprintf("%s is required", field),
	}
}

// InvalidField is returned for a malformed field value.
func InvalidField(field, reason string) *ValidationError {
	return &ValidationError{
		Code:    "INVALID_" + fieldCode(field),
		Message: fmt.Sprintf("%s is invalid: %s", field, reason),
	}
}

// InvalidEnum is returned when an enumerated field holds a value outside
// its declared set. The message lists the allowed values.
func InvalidEnum(field, got string, allowed []string) *ValidationError {
	return &ValidationError{
		Code:    "INVALID_" + fieldCode(field),
		Message: fmt.Sprintf("%s must be one of: %s (got %q)", field, strings.Join(allowed, ", "), got),
	}
}

// InvalidJSON is returned when a JSON-blob field was supplied as a string
// that does not parse as JSON.
func InvalidJSON(field string) *ValidationError {
	return &ValidationError{
		Code:    "INVALID_" + fieldCode(field) + "_JSON",
		Message: fmt.Sprintf("%s must be a JSON object or a valid JSON string", field),
	}
}

// InvalidType is returned when a field holds a JSON value of the wrong
// type entirely (e.g. a blob field that is neither object nor string).
func InvalidType(field, want string) *ValidationError {
	return &ValidationError{
		Code:    "INVALID_" + fieldCode(field) + "_TYPE",
		Message: fmt.Sprintf("%s must be %s", field, want),
	}
}

// FieldNotAllowed is returned when a client-forbidden field (the owner
// identifier under any alias) appears in a request body, independent of
// its value.
func FieldNotAllowed(field string) *ValidationError {
	return &ValidationError{
		Code:    fieldCode(field) + "_NOT_ALLOWED",
		Message: fmt.Sprintf("%s cannot be set by the client", field),
	}
}
