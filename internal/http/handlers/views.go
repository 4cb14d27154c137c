package handlers

import (
	"github.com/shopspring/decimal"

	"torta/internal/domain"
)

type productView struct {
	ID          int
	Name        string
	Description string
	Image       string
	Color       string
	Price       string
}

// viewProduct translates a product's text when its key is defined.
func viewProduct(sh *Shell, p domain.Product) productView {
	v := productView{ID: p.ID, Name: p.Name, Description: p.Description, Image: p.Image, Color: p.Color}
	if p.TranslationKey != "" {
		nameKey := "products." + p.TranslationKey + ".name"
		if s := sh.T(nameKey); s != nameKey {
			v.Name = s
		}
		descKey := "products." + p.TranslationKey + ".description"
		if s := sh.T(descKey); s != descKey {
			v.Description = s
		}
	}
	if p.Price.Valid {
		v.Price = money(sh, p.Price.Decimal)
	}
	return v
}

func money(sh *Shell, d decimal.Decimal) string {
	return d.String() + " " + sh.T("common.currency")
}
