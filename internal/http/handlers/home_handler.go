package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"torta/internal/carousel"
	"torta/internal/catalog"
)

const (
	slideHero   = "hero"
	slideSocial = "social"
)

type HomeHandler struct {
	Catalog  *catalog.Catalog
	Carousel carousel.Config
}

// Deck lists the home page sections: hero, one per flavor, then social links.
func (h *HomeHandler) Deck() carousel.Deck {
	d := carousel.Deck{slideHero}
	for _, id := range h.Catalog.IDs() {
		d = append(d, fmt.Sprintf("flavor-%d", id))
	}
	return append(d, slideSocial)
}

// pageViewport settles as soon as it is told to scroll; a rendered page
// has no animation to wait for.
type pageViewport struct{ ctl *carousel.Controller }

func (v pageViewport) ScrollTo(i int) { v.ctl.OnSettled(i) }

type slideView struct {
	Index   int
	ID      string
	Kind    string
	Active  bool
	Product *productView
}

// Home renders the deck with the section chosen by ?slide=N (or a section
// id such as flavor-3) and ?nav=next|prev.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	deck := h.Deck()
	ctl, err := carousel.New(deck, h.Carousel)
	if err != nil {
		return err
	}
	ctl.Attach(pageViewport{ctl: ctl})
	if q := c.Query("slide"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			ctl.GoTo(n)
		} else if i := deck.Index(q); i >= 0 {
			ctl.GoTo(i)
		}
	}
	if k := carousel.ParseKey(c.Query("nav")); k != carousel.KeyNone {
		ctl.Key(k)
	}
	active := ctl.CurrentIndex()

	sh := ShellFrom(c)
	products := h.Catalog.All()
	slides := make([]slideView, len(deck))
	for i, id := range deck {
		s := slideView{Index: i, ID: id, Active: i == active}
		switch {
		case id == slideHero:
			s.Kind = slideHero
		case id == slideSocial:
			s.Kind = slideSocial
		default:
			s.Kind = "product"
			pv := viewProduct(sh, products[i-1])
			s.Product = &pv
		}
		slides[i] = s
	}

	return render(c, "home", fiber.Map{
		"Slides": slides,
		"Active": active,
		"First":  active == 0,
		"Last":   active == len(deck)-1,
	})
}
