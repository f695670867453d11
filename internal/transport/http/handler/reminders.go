package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medportal-notify/internal/domain"
)

// ReminderScheduler creates reminder sets for confirmed appointments.
type ReminderScheduler interface {
	Schedule(ctx context.Context, req domain.ScheduleReminderRequest) (*domain.ReminderSet, error)
}

// ReminderHandler handles reminder endpoints.
type ReminderHandler struct {
	svc ReminderScheduler
}

func NewReminderHandler(svc ReminderScheduler) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func (h *ReminderHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req domain.ScheduleReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rs, err := h.svc.Schedule(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rs)
}
