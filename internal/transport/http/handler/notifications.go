package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medportal-notify/internal/application/notification"
	"github.com/medportal-notify/internal/domain"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.ListUnread(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "notificationId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	var req domain.MarkAllReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if _, err := h.svc.MarkAllRead(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true})
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Send(r.Context(), req); err != nil {
		httpTextError(w, err, "Error sending notification")
		return
	}
	writeText(w, http.StatusOK, "Notification sent")
}

func (h *NotificationHandler) SendLabStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.LabStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SendLabStatus(r.Context(), req); err != nil {
		httpTextError(w, err, "Error sending lab status notification")
		return
	}
	writeText(w, http.StatusOK, "Lab status notification sent")
}

func (h *NotificationHandler) SendAccountStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.AccountStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SendAccountStatus(r.Context(), req); err != nil {
		httpTextError(w, err, "Error sending account status notification")
		return
	}
	writeText(w, http.StatusOK, "Account status notification sent")
}
