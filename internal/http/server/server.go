// Package server assembles the storefront's fiber application.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"torta/internal/catalog"
	"torta/internal/config"
	"torta/internal/http/handlers"
	"torta/internal/i18n"
	applog "torta/internal/log"
	"torta/internal/metrics"
	"torta/internal/ratelimit"
	"torta/internal/repos"
	"torta/internal/services"
	"torta/web"
)

type Options struct {
	Config  config.Config
	DB      *sqlx.DB
	Catalog *catalog.Catalog
	Relay   services.Sender
	Bundle  *i18n.Bundle
	Metrics *metrics.Metrics
	// Store overrides the attempt counter store chosen by Config.
	Store ratelimit.Store
	// Views overrides the embedded templates.
	Views fiber.Views
	// GlobalLimit is the per-IP requests per minute; 0 means 60.
	GlobalLimit int
	Now         func() time.Time
}

// NewViews builds the template engine over the embedded templates.
func NewViews() *html.Engine {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	return engine
}

func New(opts Options) (*fiber.App, error) {
	cfg := opts.Config
	if opts.DB == nil {
		return nil, errors.New("server: database is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Bundle == nil {
		b, err := i18n.Load()
		if err != nil {
			return nil, err
		}
		opts.Bundle = b
	}
	if opts.Views == nil {
		opts.Views = NewViews()
	}
	if opts.GlobalLimit == 0 {
		opts.GlobalLimit = 60
	}
	store := opts.Store
	if store == nil {
		s, err := ratelimit.NewStore(cfg.EffectiveRateLimitStore(), opts.DB)
		if err != nil {
			return nil, err
		}
		store = s
	}

	users := repos.NewUserRepo(opts.DB)
	authSvc := services.NewAuthService(users, store)
	orderSvc := services.NewOrderService(opts.Catalog, opts.Relay)
	deps := handlers.NewDeps(cfg, opts.Catalog, orderSvc, authSvc, opts.Bundle, opts.Metrics, opts.Now)

	app := fiber.New(fiber.Config{
		Views:        opts.Views,
		ViewsLayout:  "layouts/main",
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(opts.Metrics.Middleware())
	app.Use(deps.ShellHandler.Middleware())
	app.Use(handlers.CurrentUser(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        opts.GlobalLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || p == "/metrics" || p == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		// JSON clients post without a form token.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			sh := handlers.ShellFrom(c)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{
				"Message": sh.T("common.securityCheck"), "Shell": sh, "T": sh.T,
			})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))

	// ---------- App handlers ----------
	home := deps.HomeHandler
	buy := deps.BuyHandler
	shell := deps.ShellHandler

	app.Get("/", home.Home)
	app.Get("/buy/:productId", buy.Form)
	app.Post("/buy/:productId", buy.Submit)

	app.Get(handlers.SubmitOrderPath, deps.OrderAPIHandler.Info)
	app.Post(handlers.SubmitOrderPath, deps.OrderAPIHandler.Submit)

	app.Post("/locale", shell.SetLocale)
	app.Post("/theme", shell.SetTheme)

	authH := deps.AuthHandler
	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Get("/signup", authH.SignupForm)
	app.Post("/signup", authH.Signup)
	app.Post("/logout", authH.Logout)
	app.Get("/account", handlers.RequireUser(authSvc), authH.Account)

	app.Get("/sitemap.xml", deps.SitemapHandler.Sitemap)
	app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// Locale-prefixed pages come last so they never shadow the routes above.
	app.Get("/:locale", shell.WithLocale(home.Home))
	app.Get("/:locale/buy/:productId", shell.WithLocale(buy.Form))
	app.Post("/:locale/buy/:productId", shell.WithLocale(buy.Submit))

	app.Use(handlers.NotFound)

	applog.Logger().WithFields(map[string]any{
		"rate_limit_store": cfg.EffectiveRateLimitStore(),
		"relay_configured": orderSvc.RelayConfigured(),
	}).Info("server.ready")
	return app, nil
}
