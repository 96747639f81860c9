package dtos

import (
	"time"

	"github.com/shopspring/decimal"
)

type UpdateStoreSettingsRequest struct {
	ExpectedUpdatedAt     time.Time        `json:"expected_updated_at" validate:"required"`
	StoreName             *string          `json:"store_name,omitempty" validate:"omitempty,min=1,max=200"`
	SupportEmail          *string          `json:"support_email,omitempty" validate:"omitempty,email"`
	Currency              *string          `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	LowStockThreshold     *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold,omitempty"`
}
