package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"torta/internal/log"
	"torta/internal/metrics"
	"torta/internal/services"
)

type AuthHandler struct {
	Auth         *services.AuthService
	Metrics      *metrics.Metrics
	CookieSecure bool
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.CookieSecure,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Email": ""})
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Err": "", "Email": "", "Name": ""})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, services.ErrRateLimited):
		return "rate_limited"
	default:
		return "failed"
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")

	_, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	h.Metrics.ObserveAuth("login", outcome(err))
	switch {
	case err == nil:
	case errors.Is(err, services.ErrRateLimited):
		log.Security(c, "rate.login.hit", map[string]any{"email": email})
		return render(c.Status(fiber.StatusTooManyRequests), "login", fiber.Map{
			"Err": ShellFrom(c).T("auth.rateLimited"), "Email": email,
		})
	case errors.Is(err, services.ErrBadCreds):
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return render(c.Status(fiber.StatusUnauthorized), "login", fiber.Map{
			"Err": ShellFrom(c).T("auth.invalidCredentials"), "Email": email,
		})
	default:
		return err
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/account")
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	email := c.FormValue("email")
	name := c.FormValue("name")

	_, err := h.Auth.Signup(c.UserContext(), sid, email, name, c.FormValue("password"))
	h.Metrics.ObserveAuth("signup", outcome(err))
	switch {
	case err == nil:
	case errors.Is(err, services.ErrRateLimited):
		log.Security(c, "rate.signup.hit", map[string]any{"email": email})
		return render(c.Status(fiber.StatusTooManyRequests), "signup", fiber.Map{
			"Err": ShellFrom(c).T("auth.signupRateLimited"), "Email": email, "Name": name,
		})
	case errors.Is(err, services.ErrSignupFailed):
		log.Security(c, "auth.signup.fail", map[string]any{"email": email})
		return render(c.Status(fiber.StatusBadRequest), "signup", fiber.Map{
			"Err": ShellFrom(c).T("auth.signupFailed"), "Email": email, "Name": name,
		})
	default:
		return err
	}

	log.Audit(c, "auth.signup.success", map[string]any{"email": email})
	return c.Redirect("/account")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}

// Account shows the signed-in user; RequireUser guards it.
func (h *AuthHandler) Account(c *fiber.Ctx) error {
	return render(c, "account", nil)
}
