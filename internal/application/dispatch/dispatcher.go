// Package dispatch persists notifications and pushes them to live channels.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medportal-notify/internal/config"
	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/realtime"
)

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// Pusher delivers events to live channels.
type Pusher interface {
	Push(ctx context.Context, userID, event string, payload interface{}) error
	PushAll(ctx context.Context, event string, payload interface{}) error
}

// Directory lists the users that currently hold a live channel.
type Directory interface {
	Users() []string
}

// Sink receives every persisted notification. Failures are logged only.
type Sink interface {
	Publish(ctx context.Context, n domain.Notification) error
}

type Dispatcher struct {
	store     Store
	pusher    Pusher
	directory Directory
	sink      Sink
	mode      string
	now       func() time.Time
}

type Option func(*Dispatcher)

func WithSink(s Sink) Option {
	return func(d *Dispatcher) { d.sink = s }
}

func WithBroadcastMode(mode string) Option {
	return func(d *Dispatcher) { d.mode = mode }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func New(store Store, pusher Pusher, directory Directory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		pusher:    pusher,
		directory: directory,
		mode:      config.BroadcastTransient,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify persists a notification for userID and pushes it as a "notification" event.
func (d *Dispatcher) Notify(ctx context.Context, userID, title, message, typ string) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	if err := d.Deliver(ctx, n, domain.EventNotification); err != nil {
		return nil, err
	}
	return n, nil
}

// Deliver persists n and pushes it to its recipient under event.
// A failed push never undoes the stored record.
func (d *Dispatcher) Deliver(ctx context.Context, n *domain.Notification, event string) error {
	if n.UserID == "" {
		return fmt.Errorf("notification has no recipient: %w", domain.ErrBadRequest)
	}
	if err := d.persist(ctx, n); err != nil {
		return err
	}
	d.push(ctx, n.UserID, event, *n)
	return nil
}

// Broadcast delivers n to everyone according to the configured broadcast mode.
func (d *Dispatcher) Broadcast(ctx context.Context, n *domain.Notification, event string) error {
	n.UserID = ""
	switch d.mode {
	case config.BroadcastSingle:
		if err := d.persist(ctx, n); err != nil {
			return err
		}
		d.pushAll(ctx, event, *n)
	case config.BroadcastFanout:
		users := d.directory.Users()
		var errs []error
		for _, userID := range users {
			rec := *n
			rec.NotificationID = ""
			rec.UserID = userID
			if err := d.Deliver(ctx, &rec, event); err != nil {
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("fanout to %d users: %w", len(users), err)
		}
	default:
		if n.CreatedAt.IsZero() {
			n.CreatedAt = d.now().UTC()
		}
		d.pushAll(ctx, event, *n)
	}
	return nil
}

func (d *Dispatcher) persist(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now().UTC()
	}
	if err := d.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if d.sink != nil {
		if err := d.sink.Publish(ctx, *n); err != nil {
			slog.Warn("notification sink publish failed", "notification_id", n.NotificationID, "err", err)
		}
	}
	return nil
}

func (d *Dispatcher) push(ctx context.Context, userID, event string, n domain.Notification) {
	err := d.pusher.Push(ctx, userID, event, n)
	switch {
	case err == nil:
		slog.Debug("notification pushed", "user_id", userID, "event", event)
	case errors.Is(err, realtime.ErrNotConnected):
		slog.Debug("user offline, notification stored only", "user_id", userID)
	default:
		slog.Warn("notification push failed", "user_id", userID, "event", event,
			"err", fmt.Errorf("%w: %w", domain.ErrDelivery, err))
	}
}

func (d *Dispatcher) pushAll(ctx context.Context, event string, n domain.Notification) {
	if err := d.pusher.PushAll(ctx, event, n); err != nil {
		slog.Warn("broadcast push failed", "event", event, "err", err)
	}
}
