package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hub-activity-api/internal/application/ingest"
	"github.com/hub-activity-api/internal/application/preference"
	"github.com/hub-activity-api/internal/application/push"
	"github.com/hub-activity-api/internal/config"
	"github.com/hub-activity-api/internal/transport/http/handler"
	appmiddleware "github.com/hub-activity-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — push registration hits SNS, keep it bounded.
	registrationRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	prefSvc := preference.NewService(deps.PreferenceRepo)
	pushSvc := push.NewService(deps.PushPlatform, deps.PushTokenRepo, deps.NotificationRepo)
	ingestSvc := ingest.NewService(deps.NotificationRepo)

	healthH := handler.NewHealthHandler()
	badgeH := handler.NewBadgeHandler(deps.BadgeSvc, deps.Poller, deps.FeedSvc)
	feedH := handler.NewFeedHandler(deps.FeedSvc)
	prefH := handler.NewPreferenceHandler(prefSvc)
	pushH := handler.NewPushHandler(pushSvc)
	ingestH := handler.NewIngestHandler(ingestSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Put("/notifications/{id}/read", feedH.MarkRead)
			r.Get("/notifications/{id}/deep-link", pushH.DeepLink)

			r.With(registrationRL.Limit).Post("/push-tokens", pushH.Register)
			r.Delete("/push-tokens", pushH.Deregister)

			// Hub-scoped routes: the token's hub must match the path.
			r.Route("/hubs/{hubID}", func(r chi.Router) {
				r.Use(appmiddleware.RequireHub())

				r.Get("/badges", badgeH.Get)
				r.Post("/badges/watch", badgeH.Watch)
				r.Delete("/badges/watch", badgeH.Unwatch)

				r.Get("/notifications", feedH.List)
				r.Post("/notifications", ingestH.Create)
				r.Get("/notifications/unread-count", feedH.UnreadCount)
				r.Put("/notifications/read-all", feedH.MarkAllRead)

				r.Get("/notification-preferences", prefH.Get)
				r.Put("/notification-preferences", prefH.Update)
			})
		})
	})

	return r
}
