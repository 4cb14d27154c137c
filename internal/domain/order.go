package domain

import "github.com/shopspring/decimal"

type ShippingMethod string

const (
	Pickup   ShippingMethod = "pickup"
	Delivery ShippingMethod = "delivery"
)

func (m ShippingMethod) Valid() bool {
	return m == Pickup || m == Delivery
}

// LineItem selects a quantity of one product.
type LineItem struct {
	ProductID int `json:"id"`
	Quantity  int `json:"quantity"`
}

// OrderRequest is the customer-entered part of an order form.
type OrderRequest struct {
	CustomerName   string         `json:"fullName"`
	PhoneNumber    string         `json:"phoneNumber"`
	Address        string         `json:"address"`
	ShippingMethod ShippingMethod `json:"shippingMethod"`
	LineItems      []LineItem     `json:"selectedProducts"`
}

// ResolvedItem is a line item with the catalog details attached.
type ResolvedItem struct {
	ProductID   int                 `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Color       string              `json:"color"`
	Quantity    int                 `json:"quantity"`
	Price       decimal.NullDecimal `json:"price"`
}

// Subtotal is price × quantity; missing prices count as zero.
func (r ResolvedItem) Subtotal() decimal.Decimal {
	if !r.Price.Valid {
		return decimal.Zero
	}
	return r.Price.Decimal.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// OrderPayload is what the relay endpoint accepts.
type OrderPayload struct {
	OrderRequest
	Items []ResolvedItem `json:"selectedProductsWithDetails"`
}

// Total sums item subtotals.
func (p OrderPayload) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// TotalQuantity sums item quantities.
func (p OrderPayload) TotalQuantity() int {
	n := 0
	for _, it := range p.Items {
		n += it.Quantity
	}
	return n
}
