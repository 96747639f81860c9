package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

/*
VersionedEntity:

* `comparable`  → lets us compare a result against the zero value of T
* GetID / GetVersionToken for the conditional write and the refetch
*/
type VersionedEntity interface {
	comparable
	GetID() uuid.UUID
	GetVersionToken() time.Time
}

// UpdateIfVersionFunc issues `UPDATE … WHERE id=$id AND updated_at=$expected
// RETURNING …`. It returns the updated row, or the zero value of T when no
// row matched. A non-nil error means the write never completed.
type UpdateIfVersionFunc[T VersionedEntity] func(
	ctx context.Context,
	entity T,
	expected time.Time,
) (T, error)

// GetByIDFunc returns the zero value of T when the row does not exist.
type GetByIDFunc[T VersionedEntity] func(
	ctx context.Context,
	id uuid.UUID,
) (T, error)

// ConflictError reports that the row still exists but carries a different
// version token. Current is the state a human must review before reapplying.
type ConflictError[T VersionedEntity] struct {
	Current T
}

func (e *ConflictError[T]) Error() string { return utils.ErrRowVersionConflict.Error() }
func (e *ConflictError[T]) Unwrap() error { return utils.ErrRowVersionConflict }

// TransientError wraps a failure that happened before the version predicate
// could be evaluated. State is unchanged and the caller may try again.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return utils.ErrTransientWrite.Error() + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == utils.ErrTransientWrite }

// RejectedError is a write PostgreSQL refused on its content: SQLSTATE
// class 22 (data exception) or 23 (integrity constraint). Sending the same
// write again fails the same way.
type RejectedError struct {
	Err *pgconn.PgError
}

func (e *RejectedError) Error() string { return e.Err.Error() }

func (e *RejectedError) Unwrap() error { return e.Err }

func (e *RejectedError) Is(target error) bool { return target == utils.ErrWriteRejected }

// IsIntegrity reports a unique, foreign key, check or not-null violation.
func (e *RejectedError) IsIntegrity() bool { return strings.HasPrefix(e.Err.Code, "23") }

// AsRejected finds a content rejection in err, whether or not it was
// already wrapped as a *RejectedError.
func AsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")) {
		return &RejectedError{Err: pgErr}, true
	}
	return nil, false
}

func classifyWriteError(err error) error {
	if rejected, ok := AsRejected(err); ok {
		return rejected
	}
	return &TransientError{Err: err}
}

/*
WriteIfVersion performs a single optimistic-concurrency write.

  - one row back        → the updated entity (holding the new token)
  - zero rows, row gone → utils.ErrRecordNotFound
  - zero rows, row kept → *ConflictError[T] with the current row
  - constraint/data     → *RejectedError
  - other driver error  → *TransientError

It never retries: whether to reapply a change on top of someone else's
is a decision for the admin who made it.
*/
func WriteIfVersion[T VersionedEntity](
	ctx context.Context,
	entity T,
	expected time.Time,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
) (T, error) {
	var zero T

	updated, err := updateIfVersion(ctx, entity, expected)
	if err != nil {
		return zero, classifyWriteError(err)
	}
	if updated != zero {
		return updated, nil
	}

	// Zero rows matched: deleted, or modified by someone else.
	current, err := getByID(ctx, entity.GetID())
	if err != nil {
		return zero, &TransientError{Err: err}
	}
	if current == zero {
		return zero, utils.ErrRecordNotFound
	}
	return zero, &ConflictError[T]{Current: current}
}

// AsConflict extracts the current row from a conflict error.
func AsConflict[T VersionedEntity](err error) (T, bool) {
	var conflict *ConflictError[T]
	if errors.As(err, &conflict) {
		return conflict.Current, true
	}
	var zero T
	return zero, false
}
