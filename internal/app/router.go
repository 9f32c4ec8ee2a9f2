package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/invoicevista/docs"
	"github.com/fkhayef/invoicevista/internal/auth"
	"github.com/fkhayef/invoicevista/internal/config"
	"github.com/fkhayef/invoicevista/internal/logger"
	"github.com/fkhayef/invoicevista/internal/portal"
	"github.com/fkhayef/invoicevista/internal/settlement"
	"github.com/fkhayef/invoicevista/internal/store"
	mw "github.com/fkhayef/invoicevista/pkg/middleware"
)

// NewRouter wires the auth gate, settlement engine and portal onto a chi
// router.
func NewRouter(s store.Store, cfg *config.Config) http.Handler {
	// Auth feature
	gate := auth.NewGate(s, auth.NewMemorySessions(), cfg.BcryptCost)
	authHandler := auth.NewHandler(gate)

	// Portal feature (settlement engine injected)
	engine := settlement.NewEngine(s)
	portalService := portal.NewService(s, engine)
	portalHandler := portal.NewHandler(portalService, gate)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(logger.WithComponent("http")))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/", portalHandler.Routes())
	})

	return r
}
