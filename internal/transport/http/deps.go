package http

import (
	"context"
	"net/http"

	"github.com/medportal-notify/internal/domain"
)

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// Dispatcher is the minimal interface the router requires to deliver new notifications.
type Dispatcher interface {
	Deliver(ctx context.Context, n *domain.Notification, event string) error
	Broadcast(ctx context.Context, n *domain.Notification, event string) error
}

// ReminderScheduler is the minimal interface the router requires to create reminder sets.
type ReminderScheduler interface {
	Schedule(ctx context.Context, req domain.ScheduleReminderRequest) (*domain.ReminderSet, error)
}

// ConnectionCounter reports the number of users holding a live channel.
type ConnectionCounter interface {
	Len() int
}

// Deps holds all dependencies for the router.
type Deps struct {
	NotificationRepo NotificationRepository
	Dispatcher       Dispatcher
	Reminders        ReminderScheduler
	Connections      ConnectionCounter
	LiveChannel      http.Handler // nil disables /ws
}
