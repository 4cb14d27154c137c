package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"torta/internal/catalog"
	"torta/internal/client"
	"torta/internal/config"
	"torta/internal/domain"
	"torta/internal/http/handlers"
	"torta/internal/http/server"
	applog "torta/internal/log"
	"torta/internal/metrics"
	"torta/internal/relay"
	"torta/internal/repos"
	"torta/internal/services"
	"torta/internal/sitemap"
)

func main() {
	app := &cli.App{
		Name:  "torta",
		Usage: "Torta Excelencia storefront",
		Commands: []*cli.Command{
			serveCommand(),
			sitemapCommand(),
			submitCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		applog.Logger().WithError(err).Fatal("torta.exit")
	}
}

// loadConfig reads the environment and applies logging settings.
func loadConfig() (config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	applog.SetLevel(cfg.LogLevel)
	closeFn := func() {}
	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Logger().WithError(err).Warnf("could not open log file %s", cfg.LogFile)
		} else {
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
			closeFn = func() { _ = f.Close() }
		}
	}
	return cfg, closeFn, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port (overrides PORT)"},
			&cli.StringFlag{Name: "db", Usage: "sqlite DSN (overrides DB_DSN)"},
		},
		Action: func(cctx *cli.Context) error {
			cfg, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()
			if p := cctx.String("port"); p != "" {
				cfg.Port = p
			}
			if dsn := cctx.String("db"); dsn != "" {
				cfg.DBDSN = dsn
			}

			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if !cfg.RelayConfigured() {
				applog.Logger().Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID unset; orders will be rejected")
			}
			opts := server.Options{
				Config:  cfg,
				DB:      db,
				Catalog: catalog.Default(),
				Relay:   relay.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, applog.Logger()),
				Metrics: metrics.New(),
			}
			if cfg.Dev {
				engine := server.NewViews()
				engine.Reload(true)
				opts.Views = engine
			}
			app, err := server.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = app.ShutdownWithTimeout(10 * time.Second)
			}()

			applog.Logger().WithField("port", cfg.Port).Info("server.listen")
			return app.Listen(":" + cfg.Port)
		},
	}
}

func sitemapCommand() *cli.Command {
	return &cli.Command{
		Name:  "sitemap",
		Usage: "print sitemap.xml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base", Usage: "site URL (overrides SITE_URL)"},
		},
		Action: func(cctx *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			base := cfg.SiteURL
			if b := cctx.String("base"); b != "" {
				base = b
			}
			return sitemap.Build(base, handlers.Locales(), catalog.Default().IDs(), time.Now()).Write(cctx.App.Writer)
		},
	}
}

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "send one order to a running storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "storefront base URL"},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "address", Required: true},
			&cli.StringFlag{Name: "shipping", Value: string(domain.Pickup), Usage: "pickup or delivery"},
			&cli.IntSliceFlag{Name: "product", Required: true, Usage: "product id, repeatable"},
			&cli.IntSliceFlag{Name: "qty", Usage: "quantity per --product, defaults to 1"},
		},
		Action: func(cctx *cli.Context) error {
			ids := cctx.IntSlice("product")
			qtys := cctx.IntSlice("qty")
			items := make([]domain.LineItem, len(ids))
			for i, id := range ids {
				q := 1
				if i < len(qtys) {
					q = qtys[i]
				}
				items[i] = domain.LineItem{ProductID: id, Quantity: q}
			}
			req := domain.OrderRequest{
				CustomerName:   cctx.String("name"),
				PhoneNumber:    cctx.String("phone"),
				Address:        cctx.String("address"),
				ShippingMethod: domain.ShippingMethod(cctx.String("shipping")),
				LineItems:      items,
			}

			c := client.New(cctx.String("url"), services.NewOrderService(catalog.Default(), nil))
			ctx, cancel := context.WithTimeout(cctx.Context, 30*time.Second)
			defer cancel()
			res, err := c.SubmitOrder(ctx, req)
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				for field, key := range verr.Fields {
					fmt.Fprintf(cctx.App.ErrWriter, "%s: %s\n", field, key)
				}
				return cli.Exit(verr.Message, 2)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cctx.App.Writer, "%s (relay message %d)\n", res.Message, res.RelayMessageID)
			return nil
		},
	}
}
