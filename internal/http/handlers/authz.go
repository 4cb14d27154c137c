package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "torta/internal/log"
	"torta/internal/services"
)

// CurrentUser attaches the session's user to Locals when there is one.
func CurrentUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			applog.Security(c, "access.denied.account", map[string]any{"sid": sid})
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
