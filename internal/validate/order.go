package validate

import (
	"fmt"
	"sort"
	"strings"

	"torta/internal/domain"
)

// Form field names, shared with the JSON payload.
const (
	FieldName     = "fullName"
	FieldPhone    = "phoneNumber"
	FieldAddress  = "address"
	FieldShipping = "shippingMethod"
	FieldProducts = "selectedProducts"
)

// Errors maps a field to the translation key of its message.
type Errors map[string]string

func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid " + strings.Join(parts, ", ")
}

// ItemField names the field of one line item's quantity.
func ItemField(productID int) string {
	return fmt.Sprintf("%s.%d", FieldProducts, productID)
}

// Order checks every field of an order request. The request is not
// modified; callers trim before display.
func Order(req domain.OrderRequest) Errors {
	errs := Errors{}
	if _, ok := Name(req.CustomerName); !ok {
		errs[FieldName] = "validation.nameMinLength"
	}
	if _, ok := Phone(req.PhoneNumber); !ok {
		errs[FieldPhone] = "validation.phoneMinLength"
	}
	if _, ok := Address(req.Address); !ok {
		errs[FieldAddress] = "validation.addressMinLength"
	}
	if !req.ShippingMethod.Valid() {
		errs[FieldShipping] = "validation.selectShippingMethod"
	}
	if len(req.LineItems) == 0 {
		errs[FieldProducts] = "validation.selectAtLeastOneProduct"
	}
	seen := make(map[int]bool, len(req.LineItems))
	for _, it := range req.LineItems {
		f := ItemField(it.ProductID)
		switch {
		case seen[it.ProductID]:
			errs[f] = "validation.duplicateProduct"
		case Qty(it.Quantity):
		case it.Quantity < MinQty:
			errs[f] = "validation.quantityMinimum"
		default:
			errs[f] = "validation.quantityMaximum"
		}
		seen[it.ProductID] = true
	}
	return errs
}
