package http

import (
	"net/http"

	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/transport/http/handler"
	appmiddleware "github.com/cheflamb/brigade-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to unauthenticated callback
	// endpoints that outside parties can hit.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	webhookH := handler.NewWebhookHandler(deps.BillingSvc, cfg.StripeWebhookSecret)
	billingH := handler.NewBillingHandler(deps.BillingSvc, deps.UserRepo, cfg.AppBaseURL)
	notifH := handler.NewNotificationHandler(deps.NotificationSvc)
	settingsH := handler.NewSettingsHandler(deps.NotificationSvc)
	subH := handler.NewPushSubscriptionHandler(deps.NotificationSvc)
	smsH := handler.NewSMSHandler(deps.SMSSender, deps.NotificationSvc)
	pushH := handler.NewPushHandler(deps.PushSender, deps.PushSubRepo)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/webhooks/stripe", webhookH.HandleStripe)
		r.With(sensitiveRL.Limit).Post("/sms/inbound", smsH.Inbound)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/billing/portal", billingH.Portal)

			r.Get("/notifications", notifH.ListUnread)
			r.Get("/notifications/schedules", notifH.ListSchedules)
			r.Delete("/notifications/schedules/{id}", notifH.DeactivateSchedule)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			r.Get("/notification-settings", settingsH.Get)
			r.Put("/notification-settings", settingsH.Update)

			r.Get("/push-subscriptions", subH.List)
			r.Post("/push-subscriptions", subH.Register)
			r.Delete("/push-subscriptions/{id}", subH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/notifications", notifH.Send)
				r.Post("/notifications/bulk", notifH.SendBulk)
				r.Post("/notifications/schedule", notifH.Schedule)
				r.Post("/sms/send", smsH.Send)
				r.Post("/push/send", pushH.Send)
			})
		})
	})

	return r
}
