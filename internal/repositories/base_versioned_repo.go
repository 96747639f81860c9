package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

/*
BaseVersionedRepo holds the DB connection, a SELECT-by-ID statement,
and a scanner for a single entity type T.  It gives you:

	• GetByID(ctx, id) (T, error)
	• SaveIfVersion(ctx, entity, expected, updateIfVersion)
*/
type BaseVersionedRepo[T VersionedEntity] struct {
	db         DB
	selectByID string
	scan       func(row pgx.Row) (T, error)
}

// NewBaseRepo is called by concrete repositories.
func NewBaseRepo[T VersionedEntity](
	db DB,
	selectByID string,
	scan func(pgx.Row) (T, error),
) *BaseVersionedRepo[T] {
	return &BaseVersionedRepo[T]{db: db, selectByID: selectByID, scan: scan}
}

func (b *BaseVersionedRepo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	row := b.db.QueryRow(ctx, b.selectByID, id)
	return b.scan(row)
}

// SaveIfVersion wires the generic optimistic-concurrency write.
func (b *BaseVersionedRepo[T]) SaveIfVersion(
	ctx context.Context,
	entity T,
	expected time.Time,
	updateIfVersion UpdateIfVersionFunc[T],
) (T, error) {
	return WriteIfVersion(ctx, entity, expected, b.GetByID, updateIfVersion)
}
