package routes

import (
	"net/http"

	"github.com/BradenHooton/superadmin-console/internal/handlers"
	"github.com/BradenHooton/superadmin-console/internal/middleware"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler of the console
type Handlers struct {
	Auth          *handlers.AuthHandler
	CSRF          *handlers.CSRFHandler
	Health        *handlers.HealthHandler
	Schools       *handlers.SchoolHandler
	Admins        *handlers.AdminHandler
	Profile       *handlers.ProfileHandler
	Notifications *handlers.NotificationHandler
	Events        *handlers.EventsHandler
}

// Deps are the middleware collaborators of the routes
type Deps struct {
	Sessions   *session.Manager
	CSRF       middleware.CSRFValidator
	Respond    *handlers.Responder
	LoginLimit middleware.RateLimitConfig
	Metrics    http.Handler // nil serves the default Prometheus registry
}

// RegisterRoutes registers all application routes. The router is expected to
// carry the device middleware so every /api request has a device id.
func RegisterRoutes(router chi.Router, h Handlers, deps Deps) {
	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	router.Get("/health", h.Health.Health)
	router.Handle("/metrics", metricsHandler)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRFProtection(deps.CSRF, deps.Respond.Logger()))

		// Public routes - no session required
		r.Get("/csrf", h.CSRF.Token)
		r.Get("/login/state", h.Auth.LoginState)
		r.Get("/login/countdown", h.Auth.Countdown)
		r.With(
			middleware.RateLimitByIP(deps.LoginLimit),
			middleware.RateLimitByDevice(deps.LoginLimit),
		).Post("/login", h.Auth.Login)

		// Protected routes - session cookie required
		r.Group(func(r chi.Router) {
			r.Use(deps.Sessions.RequireSession(deps.Respond.SessionExpired))

			r.Get("/session", h.Auth.Session)
			r.Post("/logout", h.Auth.Logout)

			r.Get("/profile", h.Profile.Get)
			r.Put("/profile", h.Profile.Update)
			r.Put("/profile/image", h.Profile.UpdateImage)

			r.Get("/schools", h.Schools.List)
			r.Post("/schools", h.Schools.Create)
			r.Put("/schools/{id}", h.Schools.Update)
			r.Delete("/schools/{id}", h.Schools.Delete)
			r.Put("/schools/{id}/status", h.Schools.ToggleStatus)

			r.Post("/admins", h.Admins.Create)

			r.Get("/notifications", h.Notifications.All)
			r.Get("/notifications/unread", h.Notifications.Unread)
			r.Put("/notifications/read-all", h.Notifications.MarkAllRead)
			r.Put("/notifications/{id}/read", h.Notifications.MarkRead)

			r.Get("/events", h.Events.Stream)
		})
	})
}
