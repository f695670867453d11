package domain

import (
	"encoding/json"
	"time"
)

// Notification types used by the core. The field is free-form; the portal adds its own.
const (
	TypeAppointment     = "appointment"
	TypeStatusUpdate    = "statusUpdate"
	TypeLabStatusUpdate = "labStatusUpdate"
)

// Live channel event names.
const (
	EventNotification    = "notification"
	EventLabStatusUpdate = "labStatusUpdate"
)

type Notification struct {
	NotificationID string                 `json:"id" dynamodbav:"notification_id"`
	UserID         string                 `json:"userId,omitempty" dynamodbav:"user_id,omitempty"`
	Title          string                 `json:"title,omitempty" dynamodbav:"title"`
	Message        string                 `json:"message" dynamodbav:"message"`
	Type           string                 `json:"type,omitempty" dynamodbav:"type,omitempty"`
	Read           bool                   `json:"read" dynamodbav:"read"`
	Data           map[string]interface{} `json:"data,omitempty" dynamodbav:"data,omitempty"`
	CreatedAt      time.Time              `json:"createdAt" dynamodbav:"created_at"`
}

// SendNotificationRequest is the send payload. Top-level keys other than the
// named fields (an admin screen's "email", say) are kept in Data; an explicit
// "data" entry wins over a top-level key of the same name.
type SendNotificationRequest struct {
	UserID  string                 `json:"userId"`
	Title   string                 `json:"title"`
	Message string                 `json:"message" validate:"required"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
}

func (r *SendNotificationRequest) UnmarshalJSON(b []byte) error {
	type plain SendNotificationRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, known := range []string{"userId", "title", "message", "type", "data"} {
		delete(raw, known)
	}
	for k, v := range raw {
		if p.Data == nil {
			p.Data = make(map[string]interface{}, len(raw))
		}
		if _, ok := p.Data[k]; !ok {
			p.Data[k] = v
		}
	}
	*r = SendNotificationRequest(p)
	return nil
}

type LabStatusRequest struct {
	LabID   string `json:"labId" validate:"required"`
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks"`
}

type AccountStatusRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks"`
}

type MarkAllReadRequest struct {
	UserID string `json:"userId" validate:"required"`
}
