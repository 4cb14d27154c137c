package domain

import "github.com/shopspring/decimal"

// Product is one flavor in the catalog. Price is optional; a product without
// a price contributes zero to order totals.
type Product struct {
	ID             int                 `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Image          string              `json:"image"`
	Color          string              `json:"color"`
	Price          decimal.NullDecimal `json:"price"`
	TranslationKey string              `json:"translationKey,omitempty"`
}

// PriceOrZero returns the price, or zero when the product has none.
func (p Product) PriceOrZero() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}
