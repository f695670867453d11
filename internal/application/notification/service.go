package notification

import (
	"context"
	"fmt"

	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/pkg/validate"
)

const rejectedStatus = "rejected"

// Store is the notification persistence the service reads and flips.
type Store interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// Dispatcher persists and pushes new notifications.
type Dispatcher interface {
	Deliver(ctx context.Context, n *domain.Notification, event string) error
	Broadcast(ctx context.Context, n *domain.Notification, event string) error
}

type Service interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, req domain.MarkAllReadRequest) (int, error)
	Send(ctx context.Context, req domain.SendNotificationRequest) error
	SendLabStatus(ctx context.Context, req domain.LabStatusRequest) error
	SendAccountStatus(ctx context.Context, req domain.AccountStatusRequest) error
}

type service struct {
	store      Store
	dispatcher Dispatcher
}

func NewService(store Store, dispatcher Dispatcher) Service {
	return &service{store: store, dispatcher: dispatcher}
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.store.ListUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, notificationID string) error {
	return s.store.MarkRead(ctx, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, req domain.MarkAllReadRequest) (int, error) {
	if err := validate.Struct(req); err != nil {
		return 0, err
	}
	return s.store.MarkAllRead(ctx, req.UserID)
}

// Send delivers to req.UserID, or broadcasts when no recipient is given.
func (s *service) Send(ctx context.Context, req domain.SendNotificationRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	n := &domain.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    req.Data,
	}
	if req.UserID == "" {
		return s.dispatcher.Broadcast(ctx, n, domain.EventNotification)
	}
	return s.dispatcher.Deliver(ctx, n, domain.EventNotification)
}

func (s *service) SendLabStatus(ctx context.Context, req domain.LabStatusRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	msg := fmt.Sprintf("Your lab status has been updated to: %s", req.Status)
	if req.Remarks != "" {
		msg += " Remarks: " + req.Remarks
	}
	return s.dispatcher.Deliver(ctx, &domain.Notification{
		UserID:  req.LabID,
		Message: msg,
		Type:    domain.TypeLabStatusUpdate,
	}, domain.EventLabStatusUpdate)
}

func (s *service) SendAccountStatus(ctx context.Context, req domain.AccountStatusRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	msg := fmt.Sprintf("Your account status has been updated to %q", req.Status)
	if req.Status == rejectedStatus && req.Remarks != "" {
		msg += ". Remarks: " + req.Remarks
	}
	return s.dispatcher.Deliver(ctx, &domain.Notification{
		UserID:  req.UserID,
		Title:   "Account Status Update",
		Message: msg,
		Type:    domain.TypeStatusUpdate,
	}, domain.EventNotification)
}
