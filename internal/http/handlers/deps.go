package handlers

import (
	"time"

	"torta/internal/carousel"
	"torta/internal/catalog"
	"torta/internal/config"
	"torta/internal/i18n"
	"torta/internal/metrics"
	"torta/internal/services"
)

type Deps struct {
	ShellHandler    *ShellHandler
	HomeHandler     *HomeHandler
	BuyHandler      *BuyHandler
	OrderAPIHandler *OrderAPIHandler
	AuthHandler     *AuthHandler
	SitemapHandler  *SitemapHandler
}

func NewDeps(cfg config.Config, cat *catalog.Catalog, orders *services.OrderService, auth *services.AuthService,
	bundle *i18n.Bundle, m *metrics.Metrics, now func() time.Time) *Deps {
	return &Deps{
		ShellHandler:    &ShellHandler{Bundle: bundle, CookieSecure: cfg.CookieSecure},
		HomeHandler:     &HomeHandler{Catalog: cat, Carousel: carousel.DefaultConfig()},
		BuyHandler:      &BuyHandler{Catalog: cat, Orders: orders, Metrics: m},
		OrderAPIHandler: &OrderAPIHandler{Orders: orders, Metrics: m},
		AuthHandler:     &AuthHandler{Auth: auth, Metrics: m, CookieSecure: cfg.CookieSecure},
		SitemapHandler:  &SitemapHandler{SiteURL: cfg.SiteURL, Catalog: cat, Now: now},
	}
}
