package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/medportal-notify/internal/application/notification"
	"github.com/medportal-notify/internal/config"
	"github.com/medportal-notify/internal/transport/http/handler"
	appmiddleware "github.com/medportal-notify/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		// Only behind a proxy that overwrites these headers; clients can set them.
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on every endpoint that creates notifications.
	sendRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifSvc := notification.NewService(deps.NotificationRepo, deps.Dispatcher)

	healthH := handler.NewHealthHandler(deps.Connections)
	notifH := handler.NewNotificationHandler(notifSvc)
	reminderH := handler.NewReminderHandler(deps.Reminders)

	r.Get("/health-check/{action}", healthH.Ping)

	if deps.LiveChannel != nil {
		r.Handle("/ws", deps.LiveChannel)
	}

	r.Route("/api", func(r chi.Router) {
		// markAllRead must be registered alongside {notificationId}/read; chi
		// prefers the static segment.
		r.Get("/notifications/{userId}", notifH.ListUnread)
		r.Post("/notifications/markAllRead", notifH.MarkAllRead)
		r.Post("/notifications/{notificationId}/read", notifH.MarkRead)

		r.Group(func(r chi.Router) {
			r.Use(sendRL.Limit)

			r.Post("/send-notification", notifH.Send)
			r.Post("/lab-status-notification", notifH.SendLabStatus)
			r.Post("/account-status-notification", notifH.SendAccountStatus)
			r.Post("/reminders", reminderH.Schedule)
		})
	})

	return r
}
