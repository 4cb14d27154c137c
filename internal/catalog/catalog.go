// Package catalog holds the static, read-only list of products.
package catalog

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"torta/internal/domain"
)

var ErrUnknownProduct = errors.New("unknown product")

type Catalog struct {
	products []domain.Product
	byID     map[int]int
}

// New builds a catalog; ids must be positive and unique.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{products: make([]domain.Product, len(products)), byID: make(map[int]int, len(products))}
	copy(c.products, products)
	for i, p := range c.products {
		if p.ID <= 0 {
			return nil, errors.Errorf("product %q: id must be positive, got %d", p.Name, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Errorf("duplicate product id %d", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// Default returns the storefront's flavors. Prices are in DZD.
func Default() *Catalog {
	c, err := New([]domain.Product{
		{ID: 1, Name: "Chocolate", Description: "Rich, decadent chocolate cake layered with silky chocolate ganache",
			Image: "/static/products/choco.webp", Color: "from-amber-900 to-amber-700", TranslationKey: "classicChocolate", Price: price(450)},
		{ID: 2, Name: "Berry", Description: "Fresh berry layers with whipped cream and berry compote",
			Image: "/static/products/berry.webp", Color: "from-purple-400 to-purple-300", TranslationKey: "berryDelight", Price: price(550)},
		{ID: 3, Name: "Strawberry", Description: "Fresh strawberry layers with whipped cream and strawberry compote",
			Image: "/static/products/fraise.webp", Color: "from-pink-400 to-pink-300", TranslationKey: "strawberryDream", Price: price(450)},
		{ID: 4, Name: "Mango", Description: "Tropical mango cake with mango cream and fresh mango pieces",
			Image: "/static/products/mango.webp", Color: "from-yellow-400 to-orange-300", TranslationKey: "mangoBliss", Price: price(480)},
		{ID: 5, Name: "Pistachio", Description: "Delicate pistachio cake with pistachio cream and crushed pistachios",
			Image: "/static/products/pistache.webp", Color: "from-green-400 to-green-300", TranslationKey: "pistachioDream", Price: price(650)},
		{ID: 6, Name: "Caramel", Description: "Luxurious caramel cake with rich caramel sauce and buttery caramel cream",
			Image: "/static/products/caramel.webp", Color: "from-amber-500 to-yellow-600", TranslationKey: "caramel", Price: price(450)},
		{ID: 7, Name: "Nuts", Description: "Rich nutty cake with mixed nuts, walnut cream, and crunchy nut toppings",
			Image: "/static/products/nuts.webp", Color: "from-amber-600 to-amber-800", TranslationKey: "nuts", Price: price(650)},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the products in catalog order.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) ByID(id int) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.products))
	for i, p := range c.products {
		ids[i] = p.ID
	}
	return ids
}

func (c *Catalog) Len() int { return len(c.products) }

// Resolve attaches catalog details to each line item, keeping order.
func (c *Catalog) Resolve(items []domain.LineItem) ([]domain.ResolvedItem, error) {
	out := make([]domain.ResolvedItem, 0, len(items))
	for _, it := range items {
		p, ok := c.ByID(it.ProductID)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownProduct, "product %d", it.ProductID)
		}
		out = append(out, domain.ResolvedItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Image:       p.Image,
			Color:       p.Color,
			Quantity:    it.Quantity,
			Price:       p.Price,
		})
	}
	return out, nil
}
