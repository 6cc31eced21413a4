package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/movement-management/docs"
	"github.com/rogerio-castellano/movement-management/internal/http/handlers"
	mw "github.com/rogerio-castellano/movement-management/internal/http/middleware"
	rl "github.com/rogerio-castellano/movement-management/internal/http/rate_limiter"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Options struct {
	Movements *handlers.MovementHandler
	Metrics   *handlers.MetricsHandler
	Health    *handlers.HealthHandler
	Logger    zerolog.Logger

	// Limiter throttles every route per client IP when set.
	Limiter *rl.Limiter
	// JWTSecret, when set, guards the movement write routes with bearer tokens.
	JWTSecret []byte
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP. Only
	// enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(mw.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	if opts.Limiter != nil {
		r.Use(mw.RateLimit(opts.Limiter))
	}

	if opts.Health != nil {
		r.Get("/health", opts.Health.Health)
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if opts.Metrics != nil {
		r.Get("/metrics/movements", opts.Metrics.GetDashboardMetrics)
	}

	h := opts.Movements
	r.Route("/movement", func(r chi.Router) {
		r.Get("/", h.FindMovements)
		r.Get("/export", h.ExportMovements)
		r.Get("/client/{clientId}", h.FindMovementsByClientID)
		r.Get("/product/{productId}", h.FindMovementsByProductID)
		r.Get("/{id}", h.FindByID)

		r.Group(func(r chi.Router) {
			if len(opts.JWTSecret) > 0 {
				r.Use(mw.Authenticate(opts.JWTSecret))
			}
			r.Post("/", h.CreateMovement)
			r.Post("/import", h.ImportMovements)
			r.Put("/{id}", h.UpdateMovement)
			r.Delete("/{id}", h.DeleteMovement)
		})
	})

	return r
}
