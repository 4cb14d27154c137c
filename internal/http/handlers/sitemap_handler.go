package handlers

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"torta/internal/catalog"
	"torta/internal/i18n"
	"torta/internal/sitemap"
)

type SitemapHandler struct {
	SiteURL string
	Catalog *catalog.Catalog
	Now     func() time.Time
}

func Locales() []string {
	out := make([]string, len(i18n.Supported))
	for i, l := range i18n.Supported {
		out[i] = string(l)
	}
	return out
}

func (h *SitemapHandler) Sitemap(c *fiber.Ctx) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	var buf bytes.Buffer
	if err := sitemap.Build(h.SiteURL, Locales(), h.Catalog.IDs(), now()).Write(&buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
