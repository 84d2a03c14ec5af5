package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError carries per-field validation details.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")

	// Dataset and report errors.
	ErrNoDataset      = New(http.StatusNotFound, "NO_DATASET", "No campaign data uploaded yet")
	ErrNoDataInRange  = New(http.StatusNotFound, "NO_DATA_IN_RANGE", "No data matches the selected date range")
	ErrReportNotFound = New(http.StatusNotFound, "REPORT_NOT_FOUND", "Unknown report")
	ErrNoReportSet    = New(http.StatusNotFound, "NO_REPORT_SET", "No reports generated yet")

	// Upload errors.
	ErrUploadTooLarge = New(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "Uploaded file exceeds the size limit")
	ErrUploadInvalid  = New(http.StatusUnprocessableEntity, "UPLOAD_INVALID", "Uploaded file could not be parsed")

	// Trial errors.
	ErrTrialExpired      = New(http.StatusPaymentRequired, "TRIAL_EXPIRED", "Trial period has expired")
	ErrActivationInvalid = New(http.StatusUnauthorized, "ACTIVATION_INVALID", "Invalid activation code")

	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ErrValidation creates a validation error with field details.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// UploadFailed wraps a structural parse failure: the whole upload attempt is
// rejected, surfacing the first reported error.
func UploadFailed(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "UPLOAD_INVALID",
		"Uploaded file could not be parsed", err.Error())
}

