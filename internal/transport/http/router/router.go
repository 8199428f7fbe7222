package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/esemenyrendezo/internal/config"
	"github.com/baechuer/esemenyrendezo/internal/metrics"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/handlers"
	appmw "github.com/baechuer/esemenyrendezo/internal/transport/http/middleware"
)

func New(
	events *handlers.EventsHandler,
	saved *handlers.SavedHandler,
	chat *handlers.ChatHandler,
	z *handlers.HealthHandler,
	auth *appmw.Auth,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(appmw.RequestID)
	r.Use(appmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Metrics)
	r.Use(appmw.AccessLog)

	r.Get("/healthz", z.Healthz)
	r.Get("/readyz", z.Readyz)
	r.Handle("/metrics", metrics.MetricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
		}

		r.With(auth.Optional).Get("/events", events.List)
		r.Get("/events/{event_id}", events.Get)
		r.Get("/chat/messages", chat.Recent)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)
			r.Post("/events", events.Create)
			r.Post("/events/{event_id}/favorite", events.Favorite)

			r.Get("/me/saved", saved.List)
			r.Get("/me/saved/calendar", saved.Calendar)
			r.Get("/me/saved/calendar.ics", saved.ICS)
			r.Put("/me/saved/{event_id}", saved.Put)
			r.Delete("/me/saved/{event_id}", saved.Delete)

			r.Post("/chat/messages", chat.Post)
		})
	})

	return r
}
