package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/finhorizon/horizon/internal/ai"
	"github.com/finhorizon/horizon/internal/audit"
	"github.com/finhorizon/horizon/internal/auth"
	"github.com/finhorizon/horizon/internal/budgets"
	"github.com/finhorizon/horizon/internal/config"
	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/i18n"
	"github.com/finhorizon/horizon/internal/invoices"
	"github.com/finhorizon/horizon/internal/ledger"
	"github.com/finhorizon/horizon/internal/notify"
	"github.com/finhorizon/horizon/internal/presence"
	"github.com/finhorizon/horizon/internal/reports"
)

// Server is the horizon API server. It owns the feature stores and the
// router they register on.
type Server struct {
	cfg        config.Config
	db         *db.DB
	notifier   *notify.Manager
	audit      *audit.Store
	authSvc    *auth.Service
	presence   *presence.Store
	hub        *presence.Hub
	invoices   *invoices.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all feature stores wired. The AI handlers are
// passed in because their provider depends on the runtime environment; nil
// disables the AI routes.
func New(cfg config.Config, database *db.DB, aiHandlers *ai.Handlers) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		notifier: notify.NewManager(),
	}

	s.audit = audit.NewStore(database)
	authStore := auth.NewStore(database)
	s.authSvc = auth.NewService(
		authStore,
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLMinutes)*time.Minute,
		s.audit,
	)
	s.presence = presence.NewStore(database, time.Duration(cfg.Presence.StaleAfterMinutes)*time.Minute)
	s.hub = presence.NewHub()
	s.invoices = invoices.NewStore(database, s.notifier)

	ledgerStore := ledger.NewStore(database)
	budgetStore := budgets.NewStore(database, s.notifier)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface: translations, signup/login, and the AI proxy, which
	// authenticates against the upstream gateway rather than the caller.
	i18n.RegisterRoutes(r)
	s.authSvc.RegisterPublicRoutes(r)
	if aiHandlers != nil {
		aiHandlers.RegisterRoutes(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth([]byte(cfg.JWTSecret)))

		s.authSvc.RegisterProtectedRoutes(r)
		notify.RegisterRoutes(r, s.notifier)
		presence.RegisterRoutes(r, s.presence, authStore, s.hub, cfg.Presence.PollSeconds)
		ledger.RegisterRoutes(r, ledgerStore, s.audit, budgetStore)
		invoices.RegisterRoutes(r, s.invoices, s.audit)
		budgets.RegisterRoutes(r, budgetStore, s.audit)
		reports.RegisterRoutes(r, reports.NewGenerator(ledgerStore))
		audit.RegisterRoutes(r, s.audit)
	})

	s.router = r
	return s
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Notifier returns the per-user notification manager so background
// producers (the simulator, sweeps) can share it.
func (s *Server) Notifier() *notify.Manager { return s.notifier }

// SweepOverdueInvoices runs one overdue pass over all users' invoices.
func (s *Server) SweepOverdueInvoices(ctx context.Context) error {
	swept, err := s.invoices.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	if len(swept) > 0 {
		log.Printf("server: marked %d invoice(s) overdue", len(swept))
	}
	return nil
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("horizon server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
