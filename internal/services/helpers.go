package services

import (
	"errors"
	"net/http"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/metrics"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

// writeError turns the outcome of a conditional write into an AppError.
// A conflict carries the current record so the admin can review it and
// reapply their change.
func writeError[T repositories.VersionedEntity](entity, label string, err error) error {
	metrics.ObserveOCCWrite(entity, err)

	if current, ok := repositories.AsConflict[T](err); ok {
		return &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeRowVersionConflict,
			Message:    label + " was changed by someone else. Review the current version and reapply your changes.",
			Details:    current,
			Err:        err,
		}
	}
	if appErr, ok := rejectedError(label, err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, utils.ErrRecordNotFound):
		return notFound(label)
	case errors.Is(err, utils.ErrTransientWrite):
		return &utils.AppError{
			StatusCode: http.StatusServiceUnavailable,
			Code:       utils.ErrCodeTransientFailure,
			Message:    "Could not save " + label + ", nothing was changed. Please try again.",
			Err:        err,
		}
	default:
		return internalError("Failed to save "+label, err)
	}
}

// rejectedError maps a constraint or bad-value rejection from the database.
// These never succeed on retry, so they are not reported as transient.
func rejectedError(label string, err error) (error, bool) {
	rejected, ok := repositories.AsRejected(err)
	if !ok {
		return nil, false
	}
	if rejected.IsIntegrity() {
		msg := label + " conflicts with existing data"
		if rejected.Err.ConstraintName != "" {
			msg += " (" + rejected.Err.ConstraintName + ")"
		}
		return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: msg, Err: err}, true
	}
	return validationError("Invalid value for "+label, err), true
}

func notFound(label string) error {
	return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: label + " not found"}
}

func internalError(msg string, err error) error {
	return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: msg, Err: err}
}

func validationError(msg string, err error) error {
	return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: msg, Err: err}
}

func writeSucceeded(entity string) {
	metrics.ObserveOCCWrite(entity, nil)
}
