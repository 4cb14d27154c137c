package domain

// Selection is the ordered set of products ticked on an order form.
// A product appears at most once; toggling it off and on again replaces
// the previous entry with quantity 1.
type Selection struct {
	items []LineItem
}

func NewSelection(items ...LineItem) *Selection {
	s := &Selection{}
	for _, it := range items {
		s.Toggle(it.ProductID, true)
		s.SetQuantity(it.ProductID, it.Quantity)
	}
	return s
}

func (s *Selection) index(productID int) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Toggle adds (quantity 1) or removes a product.
func (s *Selection) Toggle(productID int, on bool) {
	i := s.index(productID)
	switch {
	case on && i < 0:
		s.items = append(s.items, LineItem{ProductID: productID, Quantity: 1})
	case on:
		s.items[i].Quantity = 1
	case i >= 0:
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// SetQuantity updates the quantity of an already selected product.
// Unselected products are ignored.
func (s *Selection) SetQuantity(productID, quantity int) {
	if i := s.index(productID); i >= 0 {
		s.items[i].Quantity = quantity
	}
}

func (s *Selection) Has(productID int) bool { return s.index(productID) >= 0 }

func (s *Selection) Quantity(productID int) int {
	if i := s.index(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Items returns a copy in selection order.
func (s *Selection) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}
