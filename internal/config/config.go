package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	LocatorGemini       = "gemini"
	LocatorCustomSearch = "customsearch"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	Port            string        `envconfig:"PORT" default:"8080"`
	SessionSecret   string        `envconfig:"SESSION_SECRET"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionCapacity int           `envconfig:"SESSION_CAPACITY" default:"512"`
	SecureCookie    bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`

	// Telegram Config (optional, the bot is only mounted when a token is set)
	TelegramBotToken       string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL     string  `envconfig:"TELEGRAM_WEBHOOK_URL"`
	TelegramAllowedUserIDs []int64 `envconfig:"TELEGRAM_ALLOWED_USER_IDS"`

	WebShopLocator       string `envconfig:"WEBSHOP_LOCATOR" default:"gemini"`
	CustomSearchAPIKey   string `envconfig:"CUSTOM_SEARCH_API_KEY"`
	CustomSearchEngineID string `envconfig:"CUSTOM_SEARCH_ENGINE_ID"`
	CustomSearchCountry  string `envconfig:"CUSTOM_SEARCH_COUNTRY" default:"countryHR"`
	PDFFontPath          string `envconfig:"PDF_FONT_PATH"`
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.WebShopLocator = strings.ToLower(strings.TrimSpace(cfg.WebShopLocator))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the rules envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.WebShopLocator {
	case LocatorGemini:
	case LocatorCustomSearch:
		if c.CustomSearchAPIKey == "" || c.CustomSearchEngineID == "" {
			return fmt.Errorf("WEBSHOP_LOCATOR=customsearch requires CUSTOM_SEARCH_API_KEY and CUSTOM_SEARCH_ENGINE_ID")
		}
	default:
		return fmt.Errorf("unknown WEBSHOP_LOCATOR %q", c.WebShopLocator)
	}

	if c.TelegramBotToken != "" {
		if c.TelegramWebhookURL == "" {
			return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
		}
		// The webhook shares the server with the web UI, which owns "/".
		u, err := url.Parse(c.TelegramWebhookURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("TELEGRAM_WEBHOOK_URL %q is not an absolute url", c.TelegramWebhookURL)
		}
		if strings.Trim(u.Path, "/") == "" {
			return fmt.Errorf("TELEGRAM_WEBHOOK_URL %q needs a path, e.g. /telegram/webhook", c.TelegramWebhookURL)
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be positive, got %d", c.SessionCapacity)
	}
	return nil
}

// TelegramEnabled reports whether the bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsTelegramUserAllowed reports whether a Telegram user may talk to the bot.
// An empty allow list lets everyone in.
func (c *Config) IsTelegramUserAllowed(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}
