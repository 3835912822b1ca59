package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/readproof-dev/readproof/internal/middleware"
	"github.com/readproof-dev/readproof/internal/middleware/metrics"
	rl "github.com/readproof-dev/readproof/internal/middleware/ratelimiter"
	"github.com/readproof-dev/readproof/internal/setup"
)

const rateWindow = 15 * time.Minute

// New configures the chi router with all routes and per-endpoint rate limits.
// Signed writes get tight per-IP budgets; reads are not rate limited.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{deps.Config.Public.CorsOrigin},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	h := deps.Handler

	// per-IP budgets, one limiter per action class
	signLimit := middleware.RateLimit(rl.PerWindow(10, rateWindow), middleware.GetIP)
	postLimit := middleware.RateLimit(rl.PerWindow(20, rateWindow), middleware.GetIP)
	modifyLimit := middleware.RateLimit(rl.PerWindow(10, rateWindow), middleware.GetIP)
	voteLimit := middleware.RateLimit(rl.PerWindow(30, rateWindow), middleware.GetIP)

	r.Route("/v1", func(r chi.Router) {
		r.Use(metrics.Middleware)

		r.Get("/health", h.Health)

		r.Post("/attestations", signLimit(h.Attest))
		r.Get("/essays/{essayId}/attestations", h.ListAttestations)
		r.Get("/essays/{essayId}/attestations/{address}", h.GetAttestation)

		r.Get("/essays/{essayId}/comments", h.ListComments)
		r.Post("/comments", postLimit(h.CreateComment))
		r.Patch("/comments/{commentId}", modifyLimit(h.EditComment))
		r.Delete("/comments/{commentId}", modifyLimit(h.DeleteComment))

		r.Post("/comments/{commentId}/votes", voteLimit(h.CastVote))
		r.Delete("/comments/{commentId}/votes", voteLimit(h.RetractVote))
	})

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
