package errors

import "fmt"

// Application error types organized by category for better error handling

type ErrorType int

// Domain errors - expected conditions the caller can act on
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound

	// Infrastructure errors - external provider and local storage failures
	ErrorTypeExternalAPI
	ErrorTypeMalformedResponse
	ErrorTypeDatabase
	ErrorTypePlaceUnresolved

	// System/Configuration errors - non-retryable setup problems
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeExternalAPI:
		return "EXTERNAL_API_ERROR"
	case ErrorTypeMalformedResponse:
		return "MALFORMED_RESPONSE_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypePlaceUnresolved:
		return "PLACE_UNRESOLVED_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

const (
	ValidationError        = ErrorTypeValidation
	NotFoundError          = ErrorTypeNotFound
	ExternalAPIError       = ErrorTypeExternalAPI
	MalformedResponseError = ErrorTypeMalformedResponse
	DatabaseError          = ErrorTypeDatabase
	PlaceUnresolvedError   = ErrorTypePlaceUnresolved
	ConfigurationError     = ErrorTypeConfiguration
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error

	// StatusCode and Body are set for provider errors and carry the
	// upstream HTTP status and verbatim error body for diagnostics.
	StatusCode int
	Body       string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain error constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

// Infrastructure error constructors
func NewExternalAPIError(message string, cause error) *AppError {
	return Wrap(ExternalAPIError, message, cause)
}

// NewProviderStatusError builds an ExternalAPIError for a non-2xx provider
// response, keeping the status code and the raw error body.
func NewProviderStatusError(statusCode int, body string) *AppError {
	return &AppError{
		Type:       ExternalAPIError,
		Message:    fmt.Sprintf("provider returned status code %d", statusCode),
		StatusCode: statusCode,
		Body:       body,
	}
}

func NewMalformedResponseError(message string, cause error) *AppError {
	return Wrap(MalformedResponseError, message, cause)
}

func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewPlaceUnresolvedError(message string) *AppError {
	return New(PlaceUnresolvedError, message)
}

// System/Configuration error constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// Helper functions for error type checking
func IsNotFoundError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == NotFoundError
	}
	return false
}

func IsValidationError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ValidationError
	}
	return false
}

func IsExternalAPIError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ExternalAPIError
	}
	return false
}

func IsMalformedResponseError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == MalformedResponseError
	}
	return false
}

func IsDatabaseError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == DatabaseError
	}
	return false
}

func IsPlaceUnresolvedError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == PlaceUnresolvedError
	}
	return false
}

func IsConfigurationError(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == ConfigurationError
	}
	return false
}

// IsRetryable reports whether the error is a transient provider failure
// worth retrying. Configuration, not-found and malformed-response errors
// are never retried.
func IsRetryable(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	if appErr.Type != ExternalAPIError {
		return false
	}
	// 4xx responses other than 429 indicate a request problem, not a
	// transient provider failure.
	if appErr.StatusCode >= 400 && appErr.StatusCode < 500 && appErr.StatusCode != 429 {
		return false
	}
	return true
}
