package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatusType string

const (
	ProductStatusDraft    ProductStatusType = "DRAFT"
	ProductStatusActive   ProductStatusType = "ACTIVE"
	ProductStatusArchived ProductStatusType = "ARCHIVED"
)

type Product struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	SKUPrefix   string            `json:"sku_prefix"`
	Description string            `json:"description"`
	BasePrice   decimal.Decimal   `json:"base_price"`
	Status      ProductStatusType `json:"status"`
	Options     []ProductOption   `json:"options"`
	CreatedAt   time.Time         `json:"created_at"`
	Versioned
}

func (p *Product) GetID() uuid.UUID { return p.ID }

// ProductOption is one axis of the variant matrix, e.g. Shade or Size.
// Values keep the order the admin entered them in.
type ProductOption struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Values    []string  `json:"values"`
	Position  int       `json:"position"`
}

type ProductVariant struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Stock        int             `json:"stock"`
	OptionValues []string        `json:"option_values"`
	Position     int             `json:"position"`
	CreatedAt    time.Time       `json:"created_at"`
	Versioned
}

func (v *ProductVariant) GetID() uuid.UUID { return v.ID }
