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

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// Optimistic-lock helpers. Each guards the product row's token.
	UpdateIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error)
	SaveIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error)

	// SaveOptionsIfVersion replaces p's option list. Variants are untouched.
	SaveOptionsIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error)

	// SaveVariantsIfVersion replaces every variant of p with the given list.
	SaveVariantsIfVersion(ctx context.Context, p *models.Product, expected time.Time, variants []models.ProductVariant) (*models.Product, error)
}

type productRepo struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO products (
				id, name, slug, sku_prefix, description, base_price, status,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW(), NOW())
			RETURNING created_at, updated_at`,
			p.ID, p.Name, p.Slug, p.SKUPrefix, p.Description, p.BasePrice, string(p.Status),
		)
		if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return insertOptions(ctx, tx, p.ID, p.Options)
	})
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, baseSelectProduct()+" WHERE id=$1", id))
	if err != nil || p == nil {
		return p, err
	}
	if p.Options, err = listOptions(ctx, r.db, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) UpdateIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products SET
			name=$1, slug=$2, sku_prefix=$3, description=$4, base_price=$5, status=$6,
			updated_at=`+nextVersionToken+`
		WHERE id=$7 AND updated_at=$8
		RETURNING `+productColumns,
		p.Name, p.Slug, p.SKUPrefix, p.Description, p.BasePrice, string(p.Status),
		p.ID, expected,
	)
	updated, err := scanProduct(row)
	if err != nil || updated == nil {
		return updated, err
	}
	if updated.Options, err = listOptions(ctx, r.db, updated.ID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *productRepo) SaveIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
	return WriteIfVersion(ctx, p, expected, r.GetByID, r.UpdateIfVersion)
}

func (r *productRepo) SaveOptionsIfVersion(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
	replace := func(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
		var out *models.Product
		err := withTx(ctx, r.db, func(tx pgx.Tx) error {
			touched, err := touchProduct(ctx, tx, p.ID, expected)
			if err != nil || touched == nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM product_options WHERE product_id=$1`, p.ID); err != nil {
				return err
			}
			if err := insertOptions(ctx, tx, p.ID, p.Options); err != nil {
				return err
			}
			if touched.Options, err = listOptions(ctx, tx, p.ID); err != nil {
				return err
			}
			out = touched
			return nil
		})
		return out, err
	}
	return WriteIfVersion(ctx, p, expected, r.GetByID, replace)
}

func (r *productRepo) SaveVariantsIfVersion(
	ctx context.Context,
	p *models.Product,
	expected time.Time,
	variants []models.ProductVariant,
) (*models.Product, error) {
	replace := func(ctx context.Context, p *models.Product, expected time.Time) (*models.Product, error) {
		var out *models.Product
		err := withTx(ctx, r.db, func(tx pgx.Tx) error {
			touched, err := touchProduct(ctx, tx, p.ID, expected)
			if err != nil || touched == nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id=$1`, p.ID); err != nil {
				return err
			}
			for i := range variants {
				if err := insertVariant(ctx, tx, &variants[i]); err != nil {
					return err
				}
			}
			if touched.Options, err = listOptions(ctx, tx, p.ID); err != nil {
				return err
			}
			out = touched
			return nil
		})
		return out, err
	}
	return WriteIfVersion(ctx, p, expected, r.GetByID, replace)
}

// touchProduct moves the product token forward if it still equals expected.
// It returns nil when nothing matched.
func touchProduct(ctx context.Context, db DB, id uuid.UUID, expected time.Time) (*models.Product, error) {
	row := db.QueryRow(ctx, `
		UPDATE products SET updated_at=`+nextVersionToken+`
		WHERE id=$1 AND updated_at=$2
		RETURNING `+productColumns,
		id, expected,
	)
	return scanProduct(row)
}

func insertOptions(ctx context.Context, db DB, productID uuid.UUID, options []models.ProductOption) error {
	for i := range options {
		o := &options[i]
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		o.ProductID = productID
		o.Position = i
		if o.Values == nil {
			o.Values = []string{}
		}

		var values pgtype.TextArray
		if err := values.Set(o.Values); err != nil {
			return fmt.Errorf("encoding option values: %w", err)
		}
		if _, err := db.Exec(ctx, `
			INSERT INTO product_options (id, product_id, name, option_values, position)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, productID, o.Name, &values, o.Position,
		); err != nil {
			return err
		}
	}
	return nil
}

func listOptions(ctx context.Context, db DB, productID uuid.UUID) ([]models.ProductOption, error) {
	rows, err := db.Query(ctx, `
		SELECT id, product_id, name, option_values, position
		FROM product_options
		WHERE product_id=$1
		ORDER BY position`, productID)
	if err != nil {
		return nil, fmt.Errorf("listing product options: %w", err)
	}
	defer rows.Close()

	out := []models.ProductOption{}
	for rows.Next() {
		var o models.ProductOption
		var values pgtype.TextArray
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Name, &values, &o.Position); err != nil {
			return nil, err
		}
		if err := values.AssignTo(&o.Values); err != nil {
			return nil, err
		}
		if o.Values == nil {
			o.Values = []string{}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

const productColumns = `
	id, name, slug, sku_prefix, description, base_price, status,
	created_at, updated_at`

func baseSelectProduct() string {
	return "SELECT " + productColumns + " FROM products"
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var status string
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKUPrefix, &p.Description, &p.BasePrice, &status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Status = models.ProductStatusType(status)
	return &p, nil
}
