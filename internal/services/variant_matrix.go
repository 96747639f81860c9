package services

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
)

var (
	ErrNoOptions   = errors.New("product has no options to build variants from")
	ErrEmptyMatrix = errors.New("an option has no values, so no variants can be generated")
)

const (
	variantNameSeparator = " / "
	skuAbbrevLen         = 3
)

/*
GenerateVariantMatrix returns one variant per combination of option values.

Combinations follow option order with the last option varying fastest:

	Size{S,M} × Color{Red,Blue} → S / Red, S / Blue, M / Red, M / Blue

Every variant starts at basePrice with zero stock and zero cost. If any
option has no values the product is empty and an empty slice is returned.
The result depends only on its inputs; IDs are left for the caller.
*/
func GenerateVariantMatrix(skuPrefix string, basePrice decimal.Decimal, options []models.ProductOption) ([]models.ProductVariant, error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}

	total := 1
	for _, o := range options {
		if len(o.Values) == 0 {
			return []models.ProductVariant{}, nil
		}
		total *= len(o.Values)
	}

	variants := make([]models.ProductVariant, 0, total)
	idx := make([]int, len(options))
	for pos := 0; pos < total; pos++ {
		values := make([]string, len(options))
		for i, o := range options {
			values[i] = o.Values[idx[i]]
		}
		variants = append(variants, models.ProductVariant{
			Name:         strings.Join(values, variantNameSeparator),
			SKU:          buildSKU(skuPrefix, values),
			Price:        basePrice,
			CostPrice:    decimal.Zero,
			Stock:        0,
			OptionValues: values,
			Position:     pos,
		})

		// odometer step, rightmost digit first
		for i := len(options) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(options[i].Values) {
				break
			}
			idx[i] = 0
		}
	}
	return variants, nil
}

// buildSKU joins the prefix and a short code per value with hyphens,
// e.g. ("LIP", ["Ruby Red", "Matte"]) → "LIP-RUB-MAT".
// Two values sharing their first letters produce the same code.
func buildSKU(prefix string, values []string) string {
	parts := make([]string, 0, len(values)+1)
	if p := strings.TrimSpace(prefix); p != "" {
		parts = append(parts, strings.ToUpper(p))
	}
	for _, v := range values {
		parts = append(parts, abbreviate(v))
	}
	return strings.Join(parts, "-")
}

func abbreviate(value string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	runes := []rune(compact)
	if len(runes) > skuAbbrevLen {
		runes = runes[:skuAbbrevLen]
	}
	return strings.ToUpper(string(runes))
}
