// Package app wires configuration, the oracle client and the planner into
// the pieces the commands run.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"ai-supply-planner/internal/config"
	"ai-supply-planner/internal/export"
	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/metrics"
	"ai-supply-planner/internal/planner"
	"ai-supply-planner/internal/session"
	"ai-supply-planner/internal/telegram"
	"ai-supply-planner/internal/web"
	"ai-supply-planner/internal/webshop"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App holds the application's dependencies.
type App struct {
	cfg       *config.Config
	log       *logger.Logger
	registry  *prometheus.Registry
	planner   *planner.Planner
	store     *session.Store
	pdf       export.PDFOptions
	startedAt time.Time
}

// New connects to Gemini and builds the planner stack.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*App, error) {
	gen, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithGenerator(ctx, cfg, logg, gen)
}

// NewWithGenerator builds the planner stack on top of an existing generator.
func NewWithGenerator(ctx context.Context, cfg *config.Config, logg *logger.Logger, gen llm.Generator) (*App, error) {
	if logg == nil {
		logg = logger.Nop()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []planner.Option{
		planner.WithRecorder(metrics.NewRecorder(registry)),
		planner.WithLogger(logg),
	}
	if cfg.WebShopLocator == config.LocatorCustomSearch {
		locator, err := webshop.NewSearchLocator(ctx, webshop.Options{
			APIKey:   cfg.CustomSearchAPIKey,
			EngineID: cfg.CustomSearchEngineID,
			Country:  cfg.CustomSearchCountry,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, planner.WithShopLocator(locator))
	}

	p := planner.NewPlanner(gen, opts...)
	return &App{
		cfg:       cfg,
		log:       logg,
		registry:  registry,
		planner:   p,
		store:     session.NewStore(p, cfg.SessionCapacity, cfg.SessionTTL),
		pdf:       export.PDFOptions{FontPath: cfg.PDFFontPath},
		startedAt: time.Now(),
	}, nil
}

// NewSession starts a standalone session outside the store, as the CLI does.
func (a *App) NewSession() *planner.Session {
	return planner.NewSession(a.planner)
}

func (a *App) PDFOptions() export.PDFOptions {
	return a.pdf
}

// Handler builds the HTTP handler of the planner server, mounting the
// Telegram webhook when the bot is configured.
func (a *App) Handler() (http.Handler, error) {
	secret := a.cfg.SessionSecret
	if secret == "" {
		s, err := randomSecret()
		if err != nil {
			return nil, err
		}
		secret = s
		a.log.Warn(context.Background(), "session.secret_generated")
	}

	deps := web.Deps{
		Store:        a.store,
		Logger:       a.log,
		Secret:       secret,
		SessionTTL:   a.cfg.SessionTTL,
		SecureCookie: a.cfg.SecureCookie,
		PDF:          a.pdf,
		StartedAt:    a.startedAt,
		Metrics:      promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
	}

	if a.cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(a.cfg, a.store, a.log, a.pdf)
		if err != nil {
			return nil, err
		}
		deps.TelegramPath = telegram.WebhookPath(a.cfg.TelegramWebhookURL)
		deps.Telegram = bot
	}

	return web.NewRouter(deps), nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
