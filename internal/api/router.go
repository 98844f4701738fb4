package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/agent"
	"github.com/minu803/redis-chatbot/internal/api/middleware"
	"github.com/minu803/redis-chatbot/internal/handlers"
)

// NewRouter creates and configures the HTTP router. A nil limiter disables
// rate limiting on write routes.
func NewRouter(logger zerolog.Logger, a *agent.Agent, limiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024))
	r.Use(middleware.RequireJSON)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	h := handlers.NewHandler(a, logger)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Reads
	r.Get("/who/{username}", h.Who)
	r.Get("/members/{username}", h.Members)
	r.Get("/channels/{channel}/history", h.History)
	r.Get("/weather/{city}", h.Weather)

	// Writes
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Post("/identify", h.Identify)
		r.Post("/channels/{channel}/messages", h.Broadcast)
		r.Post("/dm/{username}", h.SendDM)
		r.Post("/fact", h.Fact)
		r.Post("/command", h.Command)
	})

	return r
}
