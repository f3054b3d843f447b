package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HLomotey/homa-suite-sub003/internal/billing"
	"github.com/HLomotey/homa-suite-sub003/internal/directory"
	"github.com/HLomotey/homa-suite-sub003/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	BillingHandler   *billing.Handler
	DirectoryHandler *directory.Handler
	Pool             *pgxpool.Pool
	Metrics          *observability.Metrics
}

// NewRouter assembles the chi router with middleware and mounted routes.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if p.Pool != nil {
			if err := p.Pool.Ping(req.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if p.BillingHandler != nil {
			r.Route("/billing", p.BillingHandler.MountRoutes)
		}
		if p.DirectoryHandler != nil {
			r.Route("/directory", p.DirectoryHandler.MountRoutes)
		}
	})

	return r
}
