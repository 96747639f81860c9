package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type VariantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariant, error)

	UpdateIfVersion(ctx context.Context, v *models.ProductVariant, expected time.Time) (*models.ProductVariant, error)
	SaveIfVersion(ctx context.Context, v *models.ProductVariant, expected time.Time) (*models.ProductVariant, error)
}

type variantRepo struct {
	*BaseVersionedRepo[*models.ProductVariant]
	db DB
}

func NewVariantRepository(db DB) VariantRepository {
	r := &variantRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectVariant()+" WHERE id=$1", scanVariant)
	return r
}

func (r *variantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id)
}

func (r *variantRepo) ListByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductVariant, error) {
	rows, err := r.db.Query(ctx, baseSelectVariant()+" WHERE product_id=$1 ORDER BY position", productID)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	defer rows.Close()

	var out []*models.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *variantRepo) UpdateIfVersion(ctx context.Context, v *models.ProductVariant, expected time.Time) (*models.ProductVariant, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE product_variants SET
			sku=$1, price=$2, cost_price=$3, stock=$4,
			updated_at=`+nextVersionToken+`
		WHERE id=$5 AND updated_at=$6
		RETURNING `+variantColumns,
		v.SKU, v.Price, v.CostPrice, v.Stock,
		v.ID, expected,
	)
	return scanVariant(row)
}

func (r *variantRepo) SaveIfVersion(ctx context.Context, v *models.ProductVariant, expected time.Time) (*models.ProductVariant, error) {
	return r.BaseVersionedRepo.SaveIfVersion(ctx, v, expected, r.UpdateIfVersion)
}

func insertVariant(ctx context.Context, db DB, v *models.ProductVariant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.OptionValues == nil {
		v.OptionValues = []string{}
	}
	var values pgtype.TextArray
	if err := values.Set(v.OptionValues); err != nil {
		return fmt.Errorf("encoding variant option values: %w", err)
	}
	row := db.QueryRow(ctx, `
		INSERT INTO product_variants (
			id, product_id, name, sku, price, cost_price, stock, option_values, position,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW())
		RETURNING created_at, updated_at`,
		v.ID, v.ProductID, v.Name, v.SKU, v.Price, v.CostPrice, v.Stock, &values, v.Position,
	)
	return row.Scan(&v.CreatedAt, &v.UpdatedAt)
}

const variantColumns = `
	id, product_id, name, sku, price, cost_price, stock, option_values, position,
	created_at, updated_at`

func baseSelectVariant() string {
	return "SELECT " + variantColumns + " FROM product_variants"
}

func scanVariant(row pgx.Row) (*models.ProductVariant, error) {
	var v models.ProductVariant
	var values pgtype.TextArray
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.Price, &v.CostPrice, &v.Stock, &values, &v.Position,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := values.AssignTo(&v.OptionValues); err != nil {
		return nil, err
	}
	return &v, nil
}
