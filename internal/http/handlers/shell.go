package handlers

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"

	"torta/internal/i18n"
	applog "torta/internal/log"
)

const (
	LocaleCookie = "locale"
	ThemeCookie  = "theme"
	prefMaxAge   = 31536000 // one year, in seconds

	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

var Themes = []string{ThemeLight, ThemeDark, ThemeSystem}

func validTheme(t string) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Shell is the per-request page chrome: language, direction and theme.
type Shell struct {
	Locale  i18n.Locale
	Dir     string
	Theme   string
	Path    string
	Prefix  string // "/ar" when the locale came from the URL
	Locales []i18n.Locale
	Themes  []string
	T       func(key string, args ...string) string
}

// Home is the locale-aware home URL.
func (s *Shell) Home() string {
	if s.Prefix == "" {
		return "/"
	}
	return s.Prefix
}

var fallbackBundle = sync.OnceValue(i18n.MustLoad)

type ShellHandler struct {
	Bundle       *i18n.Bundle
	CookieSecure bool
}

func (h *ShellHandler) bundle() *i18n.Bundle {
	if h == nil || h.Bundle == nil {
		return fallbackBundle()
	}
	return h.Bundle
}

func (h *ShellHandler) shell(c *fiber.Ctx, l i18n.Locale, prefix string) *Shell {
	theme := c.Cookies(ThemeCookie)
	if !validTheme(theme) {
		theme = ThemeSystem
	}
	return &Shell{
		Locale:  l,
		Dir:     l.Dir(),
		Theme:   theme,
		Path:    c.OriginalURL(),
		Prefix:  prefix,
		Locales: i18n.Supported,
		Themes:  Themes,
		T:       h.bundle().Translator(l),
	}
}

// Middleware resolves the locale from the cookie or Accept-Language.
func (h *ShellHandler) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := i18n.Resolve(c.Cookies(LocaleCookie), c.Get(fiber.HeaderAcceptLanguage))
		c.Locals("shell", h.shell(c, l, ""))
		return c.Next()
	}
}

// WithLocale serves next under a "/:locale" prefix. Unsupported prefixes
// fall through to the following routes.
func (h *ShellHandler) WithLocale(next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := c.Params("locale")
		if !i18n.IsSupported(l) {
			return c.Next()
		}
		c.Locals("shell", h.shell(c, i18n.Locale(l), "/"+l))
		return next(c)
	}
}

// ShellFrom returns the request's shell, or a default one when the
// middleware has not run.
func ShellFrom(c *fiber.Ctx) *Shell {
	if s, ok := c.Locals("shell").(*Shell); ok {
		return s
	}
	var h *ShellHandler
	return h.shell(c, i18n.Default, "")
}

// backTo returns a same-site redirect target.
func backTo(c *fiber.Ctx) string {
	to := c.FormValue("redirect")
	if !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.Contains(to, "\\") {
		return "/"
	}
	return to
}

func (h *ShellHandler) setPref(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   prefMaxAge,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
	})
}

// SetLocale handles POST /locale.
func (h *ShellHandler) SetLocale(c *fiber.Ctx) error {
	l := c.FormValue("locale")
	if !i18n.IsSupported(l) {
		applog.Security(c, "locale.invalid", map[string]any{"locale": l})
		return fiber.NewError(fiber.StatusBadRequest, "unsupported locale")
	}
	h.setPref(c, LocaleCookie, l)
	applog.Info(c, "locale.set", map[string]any{"locale": l})
	return c.Redirect(localized(backTo(c), l))
}

// localized rewrites a locale-prefixed path to the chosen locale.
func localized(path, l string) string {
	for _, s := range i18n.Supported {
		p := "/" + string(s)
		if path == p {
			return "/" + l
		}
		if strings.HasPrefix(path, p+"/") || strings.HasPrefix(path, p+"?") {
			return "/" + l + path[len(p):]
		}
	}
	return path
}

// SetTheme handles POST /theme.
func (h *ShellHandler) SetTheme(c *fiber.Ctx) error {
	t := c.FormValue("theme")
	if !validTheme(t) {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported theme")
	}
	h.setPref(c, ThemeCookie, t)
	return c.Redirect(backTo(c))
}
