// Package web serves the planner form, its JSON API and the plan exports.
package web

import (
	"net/http"
	"time"

	"ai-supply-planner/internal/export"
	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/metrics"
	"ai-supply-planner/internal/session"

	"github.com/go-chi/chi/v5"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Store      *session.Store
	Logger     *logger.Logger
	Secret     string
	SessionTTL time.Duration
	// SecureCookie marks the session cookie Secure; set it behind TLS.
	SecureCookie bool
	PDF          export.PDFOptions
	StartedAt    time.Time

	// Metrics serves /metrics when set.
	Metrics http.Handler
	// TelegramPath and Telegram mount the bot webhook when both are set.
	TelegramPath string
	Telegram     http.Handler
}

type Server struct {
	store     *session.Store
	log       *logger.Logger
	tokens    sessionTokens
	pdf       export.PDFOptions
	startedAt time.Time
}

// NewRouter wires every route of the planner server.
func NewRouter(d Deps) http.Handler {
	logg := d.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	startedAt := d.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	s := &Server{
		store:     d.Store,
		log:       logg,
		tokens:    sessionTokens{secret: []byte(d.Secret), ttl: d.SessionTTL, secure: d.SecureCookie},
		pdf:       d.PDF,
		startedAt: startedAt,
	}

	r := chi.NewRouter()
	r.Use(
		recoverer(logg),
		requestID(logg),
		logging(logg),
	)

	r.Get("/health", s.health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	if d.Telegram != nil && d.TelegramPath != "" {
		r.Method(http.MethodPost, d.TelegramPath, d.Telegram)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.index)
		r.Get("/plan/print", s.printPlan)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", s.state)
			r.Post("/plan", s.generatePlan)

			r.Route("/shopping-plan", func(r chi.Router) {
				r.Post("/", s.generateShoppingPlan)
				r.Post("/refresh", s.refreshPrices)
				r.Post("/select", s.selectOffer)
			})

			r.Route("/export", func(r chi.Router) {
				r.Get("/plan.tsv", s.planTSV)
				r.Get("/plan.pdf", s.planPDF)
				r.Get("/shopping-plan.pdf", s.shoppingPlanPDF)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, metrics.GetSysHealth(s.startedAt, s.store.Len()))
}
