package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type StoreSettingsRepository interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	UpdateIfVersion(ctx context.Context, s *models.StoreSettings, expected time.Time) (*models.StoreSettings, error)
	SaveIfVersion(ctx context.Context, s *models.StoreSettings, expected time.Time) (*models.StoreSettings, error)
}

type storeSettingsRepo struct {
	*BaseVersionedRepo[*models.StoreSettings]
	db DB
}

func NewStoreSettingsRepository(db DB) StoreSettingsRepository {
	r := &storeSettingsRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectStoreSettings()+" WHERE id=$1", scanStoreSettings)
	return r
}

func (r *storeSettingsRepo) Get(ctx context.Context) (*models.StoreSettings, error) {
	return r.GetByID(ctx, models.StoreSettingsID)
}

func (r *storeSettingsRepo) UpdateIfVersion(ctx context.Context, s *models.StoreSettings, expected time.Time) (*models.StoreSettings, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE store_settings SET
			store_name=$1, support_email=$2, currency=$3,
			low_stock_threshold=$4, free_shipping_threshold=$5,
			updated_at=`+nextVersionToken+`
		WHERE id=$6 AND updated_at=$7
		RETURNING `+storeSettingsColumns,
		s.StoreName, s.SupportEmail, s.Currency,
		s.LowStockThreshold, s.FreeShippingThreshold,
		s.ID, expected,
	)
	return scanStoreSettings(row)
}

func (r *storeSettingsRepo) SaveIfVersion(ctx context.Context, s *models.StoreSettings, expected time.Time) (*models.StoreSettings, error) {
	if s.ID == uuid.Nil {
		s.ID = models.StoreSettingsID
	}
	return r.BaseVersionedRepo.SaveIfVersion(ctx, s, expected, r.UpdateIfVersion)
}

const storeSettingsColumns = `
	id, store_name, support_email, currency, low_stock_threshold, free_shipping_threshold,
	updated_at`

func baseSelectStoreSettings() string {
	return "SELECT " + storeSettingsColumns + " FROM store_settings"
}

func scanStoreSettings(row pgx.Row) (*models.StoreSettings, error) {
	var s models.StoreSettings
	err := row.Scan(
		&s.ID, &s.StoreName, &s.SupportEmail, &s.Currency, &s.LowStockThreshold, &s.FreeShippingThreshold,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
