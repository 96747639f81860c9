package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreSettingsID is the id of the single settings row.
var StoreSettingsID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type StoreSettings struct {
	ID                    uuid.UUID       `json:"id"`
	StoreName             string          `json:"store_name"`
	SupportEmail          string          `json:"support_email"`
	Currency              string          `json:"currency"`
	LowStockThreshold     int             `json:"low_stock_threshold"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	Versioned
}

func (s *StoreSettings) GetID() uuid.UUID { return s.ID }
