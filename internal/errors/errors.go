package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidID is returned when a path identifier is malformed.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrDuplicate is returned when a unique value is already taken.
	ErrDuplicate = errors.New("duplicate value")
	// ErrUnauthorized is returned when a request carries no valid credentials.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden is returned when the caller lacks permission.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrUpload is returned when the asset host rejects or fails an upload.
	ErrUpload = errors.New("image upload failed")
)

// ValidationError describes malformed input that is not caught by struct tags.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, detail string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Detail:     detail,
	}
}

// Wrap annotates a sentinel with a client-facing message, keeping errors.Is.
func Wrap(sentinel error, message string) error {
	return &messageError{sentinel: sentinel, message: message}
}

type messageError struct {
	sentinel error
	message  string
}

func (e *messageError) Error() string { return e.message }
func (e *messageError) Unwrap() error { return e.sentinel }

// MapErrorToHTTP maps domain, validation and persistence errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewHTTPError(http.StatusBadRequest, "Validation failed", describeValidation(validationErrs))
	}

	var invalid *ValidationError
	if errors.As(err, &invalid) {
		return NewHTTPError(http.StatusBadRequest, invalid.Message, invalid.Message)
	}

	var msg *messageError
	hasMessage := errors.As(err, &msg)
	message := func(def string) string {
		if hasMessage {
			return msg.message
		}
		return def
	}

	switch {
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, message("Invalid ID format"), err.Error())
	case errors.Is(err, ErrDuplicate), errors.Is(err, gorm.ErrDuplicatedKey):
		return NewHTTPError(http.StatusBadRequest, message("Duplicate value"), err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return NewHTTPError(http.StatusNotFound, message("Resource not found"), err.Error())
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, message("Authentication required"), err.Error())
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, message("Insufficient permissions"), err.Error())
	case errors.Is(err, ErrUpload):
		return NewHTTPError(http.StatusInternalServerError, message("Image upload failed"), err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

func describeValidation(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
