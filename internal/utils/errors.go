package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	// The record was modified by someone else since it was read.
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// The record no longer exists.
	ErrRecordNotFound = errors.New("record_not_found")

	// The write never reached the version check (driver / network failure).
	ErrTransientWrite = errors.New("transient_write_failure")

	// The database refused the values themselves (constraint or bad data).
	ErrWriteRejected = errors.New("write_rejected")

	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries a structured failure from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
