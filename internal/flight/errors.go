package flight

import (
	"errors"
	"net/http"
	"strings"
)

type ErrorCode string

const (
	ErrorCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrorCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrorCodeNotFound            ErrorCode = "FLIGHT_NOT_FOUND"
	ErrorCodeInternalFailure     ErrorCode = "INTERNAL_FAILURE"
)

var (
	// ErrProviderUnavailable means the upstream flight-data provider could not
	// produce a usable answer. It is never cached.
	ErrProviderUnavailable = errors.New("flight provider unavailable")

	// ErrFlightNotFound is the empty-result outcome of a single flight lookup.
	ErrFlightNotFound = errors.New("flight not found")

	// ErrCacheMiss is returned by Store lookups when nothing is stored.
	ErrCacheMiss = errors.New("flight cache miss")
)

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProviderError carries the upstream cause while still matching
// ErrProviderUnavailable through errors.Is.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return "provider " + e.Op + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrProviderUnavailable, e.Err}
}

type AppError struct {
	Status  int
	Code    ErrorCode
	Message string
	Details []FieldIssue
}

func (e *AppError) Error() string {
	return e.Message
}

// toAppError maps domain errors onto their HTTP representation. Provider
// details are kept out of the message on purpose; they are logged instead.
func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return &AppError{
			Status:  http.StatusBadRequest,
			Code:    ErrorCodeValidation,
			Message: "validation failed",
			Details: vErr.Issues,
		}
	}

	switch {
	case errors.Is(err, ErrFlightNotFound):
		return &AppError{
			Status:  http.StatusNotFound,
			Code:    ErrorCodeNotFound,
			Message: "flight not found",
		}
	case errors.Is(err, ErrProviderUnavailable):
		return &AppError{
			Status:  http.StatusServiceUnavailable,
			Code:    ErrorCodeProviderUnavailable,
			Message: "flight search is temporarily unavailable",
		}
	}

	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    ErrorCodeInternalFailure,
		Message: "Internal Server Error",
	}
}
