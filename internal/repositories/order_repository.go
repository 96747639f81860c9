package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status *models.OrderStatusType, limit int) ([]*models.Order, error)

	// Optimistic-lock helpers
	UpdateIfVersion(ctx context.Context, o *models.Order, expected time.Time) (*models.Order, error)
	SaveIfVersion(ctx context.Context, o *models.Order, expected time.Time) (*models.Order, error)

	// Unconditional: last writer wins across the whole batch.
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.OrderStatusType) (int64, error)
}

type orderRepo struct {
	*BaseVersionedRepo[*models.Order]
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	r := &orderRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectOrder()+" WHERE id=$1", scanOrder)
	return r
}

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (
			id, order_number, customer_email, customer_name, status,
			tracking_number, carrier, internal_note, total, currency,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW())
		RETURNING created_at, updated_at`,
		o.ID, o.OrderNumber, o.CustomerEmail, o.CustomerName, string(o.Status),
		o.TrackingNumber, o.Carrier, o.InternalNote, o.Total, o.Currency,
	)
	return row.Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *orderRepo) List(ctx context.Context, status *models.OrderStatusType, limit int) ([]*models.Order, error) {
	q := baseSelectOrder()
	args := []any{}
	if status != nil {
		q += " WHERE status=$1"
		args = append(args, string(*status))
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var out []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *orderRepo) UpdateIfVersion(ctx context.Context, o *models.Order, expected time.Time) (*models.Order, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE orders SET
			status=$1, tracking_number=$2, carrier=$3, internal_note=$4,
			updated_at=`+nextVersionToken+`
		WHERE id=$5 AND updated_at=$6
		RETURNING `+orderColumns,
		string(o.Status), o.TrackingNumber, o.Carrier, o.InternalNote,
		o.ID, expected,
	)
	return scanOrder(row)
}

func (r *orderRepo) SaveIfVersion(ctx context.Context, o *models.Order, expected time.Time) (*models.Order, error) {
	return r.BaseVersionedRepo.SaveIfVersion(ctx, o, expected, r.UpdateIfVersion)
}

func (r *orderRepo) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.OrderStatusType) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status=$1, updated_at=`+nextVersionToken+`
		WHERE id = ANY($2::uuid[])`,
		string(status), uuidStrings(ids),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const orderColumns = `
	id, order_number, customer_email, customer_name, status,
	tracking_number, carrier, internal_note, total, currency,
	created_at, updated_at`

func baseSelectOrder() string {
	return "SELECT " + orderColumns + " FROM orders"
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var status string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerEmail, &o.CustomerName, &status,
		&o.TrackingNumber, &o.Carrier, &o.InternalNote, &o.Total, &o.Currency,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	o.Status = models.OrderStatusType(status)
	return &o, nil
}
