package dtos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

type ProductOptionInput struct {
	Name   string   `json:"name" validate:"required,max=64"`
	Values []string `json:"values" validate:"dive,required,max=64"`
}

type CreateProductRequest struct {
	Name        string                    `json:"name" validate:"required,max=200"`
	Slug        string                    `json:"slug" validate:"required,max=200"`
	SKUPrefix   string                    `json:"sku_prefix" validate:"required,max=16"`
	Description string                    `json:"description" validate:"max=10000"`
	BasePrice   decimal.Decimal           `json:"base_price"`
	Status      *models.ProductStatusType `json:"status,omitempty" validate:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Options     []ProductOptionInput      `json:"options" validate:"omitempty,dive"`
}

type UpdateProductRequest struct {
	ExpectedUpdatedAt time.Time                 `json:"expected_updated_at" validate:"required"`
	Name              *string                   `json:"name,omitempty" validate:"omitempty,max=200"`
	Slug              *string                   `json:"slug,omitempty" validate:"omitempty,max=200"`
	SKUPrefix         *string                   `json:"sku_prefix,omitempty" validate:"omitempty,max=16"`
	Description       *string                   `json:"description,omitempty" validate:"omitempty,max=10000"`
	BasePrice         *decimal.Decimal          `json:"base_price,omitempty"`
	Status            *models.ProductStatusType `json:"status,omitempty" validate:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
}

// ReplaceOptionsRequest swaps the option list. Existing variants are kept
// until an explicit regenerate.
type ReplaceOptionsRequest struct {
	ExpectedUpdatedAt time.Time            `json:"expected_updated_at" validate:"required"`
	Options           []ProductOptionInput `json:"options" validate:"dive"`
}

// RegenerateVariantsRequest replaces every variant of the product.
// Confirm must be true: per-variant edits are discarded.
type RegenerateVariantsRequest struct {
	ExpectedUpdatedAt time.Time `json:"expected_updated_at" validate:"required"`
	Confirm           bool      `json:"confirm"`
}

type VariantMatrixResponse struct {
	Product  *models.Product         `json:"product,omitempty"`
	Variants []models.ProductVariant `json:"variants"`
}

type UpdateVariantRequest struct {
	ExpectedUpdatedAt time.Time        `json:"expected_updated_at" validate:"required"`
	SKU               *string          `json:"sku,omitempty" validate:"omitempty,min=1,max=64"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	Stock             *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
}
