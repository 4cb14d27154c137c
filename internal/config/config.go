package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBDSN    string `envconfig:"DB_DSN" default:"torta.db"`
	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	SiteURL  string `envconfig:"SITE_URL" default:"https://torta-excelencia.com"`

	TelegramAPIURL   string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`

	// RateLimitStore is memory, sql or none.
	RateLimitStore string `envconfig:"RATE_LIMIT_STORE" default:"memory"`
	CookieSecure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	// Dev disables attempt rate limiting and reloads templates on every render.
	Dev bool `envconfig:"DEV" default:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.RateLimitStore {
	case "memory", "sql", "none":
	default:
		return errors.Errorf("RATE_LIMIT_STORE must be memory, sql or none, got %q", c.RateLimitStore)
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

// RelayConfigured reports whether chat relay credentials are present.
func (c Config) RelayConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// EffectiveRateLimitStore is the store kind after applying Dev.
func (c Config) EffectiveRateLimitStore() string {
	if c.Dev {
		return "none"
	}
	return c.RateLimitStore
}
