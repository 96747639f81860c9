package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type ScheduledActionRepository interface {
	Create(ctx context.Context, a *models.ScheduledAction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledAction, error)
	List(ctx context.Context, status *models.ScheduledActionStatusType, limit int) ([]*models.ScheduledAction, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledAction, error)
	// ListStaleRunning returns RUNNING actions last written at or before claimedBefore.
	ListStaleRunning(ctx context.Context, claimedBefore time.Time, limit int) ([]*models.ScheduledAction, error)

	UpdateIfVersion(ctx context.Context, a *models.ScheduledAction, expected time.Time) (*models.ScheduledAction, error)
	SaveIfVersion(ctx context.Context, a *models.ScheduledAction, expected time.Time) (*models.ScheduledAction, error)
}

type scheduledActionRepo struct {
	*BaseVersionedRepo[*models.ScheduledAction]
	db DB
}

func NewScheduledActionRepository(db DB) ScheduledActionRepository {
	r := &scheduledActionRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectScheduledAction()+" WHERE id=$1", scanScheduledAction)
	return r
}

func (r *scheduledActionRepo) Create(ctx context.Context, a *models.ScheduledAction) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO scheduled_actions (
			id, action_type, product_id, new_price, run_at, status, last_error, created_by,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW())
		RETURNING created_at, updated_at`,
		a.ID, string(a.ActionType), a.ProductID, nullDecimal(a.NewPrice), a.RunAt,
		string(a.Status), a.LastError, a.CreatedBy,
	)
	return row.Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *scheduledActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledAction, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *scheduledActionRepo) List(ctx context.Context, status *models.ScheduledActionStatusType, limit int) ([]*models.ScheduledAction, error) {
	q := baseSelectScheduledAction()
	args := []any{}
	if status != nil {
		q += " WHERE status=$1"
		args = append(args, string(*status))
	}
	q += fmt.Sprintf(" ORDER BY run_at LIMIT %d", limit)
	return r.query(ctx, q, args...)
}

func (r *scheduledActionRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledAction, error) {
	return r.query(ctx,
		baseSelectScheduledAction()+" WHERE status=$1 AND run_at <= $2 ORDER BY run_at LIMIT $3",
		string(models.ScheduledStatusPending), now, limit,
	)
}

func (r *scheduledActionRepo) ListStaleRunning(ctx context.Context, claimedBefore time.Time, limit int) ([]*models.ScheduledAction, error) {
	return r.query(ctx,
		baseSelectScheduledAction()+" WHERE status=$1 AND updated_at <= $2 ORDER BY updated_at LIMIT $3",
		string(models.ScheduledStatusRunning), claimedBefore, limit,
	)
}

func (r *scheduledActionRepo) query(ctx context.Context, q string, args ...any) ([]*models.ScheduledAction, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled actions: %w", err)
	}
	defer rows.Close()

	var out []*models.ScheduledAction
	for rows.Next() {
		a, err := scanScheduledAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *scheduledActionRepo) UpdateIfVersion(ctx context.Context, a *models.ScheduledAction, expected time.Time) (*models.ScheduledAction, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE scheduled_actions SET
			status=$1, last_error=$2, run_at=$3, new_price=$4,
			updated_at=`+nextVersionToken+`
		WHERE id=$5 AND updated_at=$6
		RETURNING `+scheduledActionColumns,
		string(a.Status), a.LastError, a.RunAt, nullDecimal(a.NewPrice),
		a.ID, expected,
	)
	return scanScheduledAction(row)
}

func (r *scheduledActionRepo) SaveIfVersion(ctx context.Context, a *models.ScheduledAction, expected time.Time) (*models.ScheduledAction, error) {
	return r.BaseVersionedRepo.SaveIfVersion(ctx, a, expected, r.UpdateIfVersion)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

const scheduledActionColumns = `
	id, action_type, product_id, new_price, run_at, status, last_error, created_by,
	created_at, updated_at`

func baseSelectScheduledAction() string {
	return "SELECT " + scheduledActionColumns + " FROM scheduled_actions"
}

func scanScheduledAction(row pgx.Row) (*models.ScheduledAction, error) {
	var a models.ScheduledAction
	var actionType, status string
	var price decimal.NullDecimal
	err := row.Scan(
		&a.ID, &actionType, &a.ProductID, &price, &a.RunAt, &status, &a.LastError, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.ActionType = models.ScheduledActionType(actionType)
	a.Status = models.ScheduledActionStatusType(status)
	if price.Valid {
		a.NewPrice = &price.Decimal
	}
	return &a, nil
}
