package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/medportal-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockNotificationSvc struct{ mock.Mock }

func (m *mockNotificationSvc) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if ns, _ := args.Get(0).([]domain.Notification); ns != nil {
		return ns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationSvc) MarkRead(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

func (m *mockNotificationSvc) MarkAllRead(ctx context.Context, req domain.MarkAllReadRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationSvc) Send(ctx context.Context, req domain.SendNotificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockNotificationSvc) SendLabStatus(ctx context.Context, req domain.LabStatusRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockNotificationSvc) SendAccountStatus(ctx context.Context, req domain.AccountStatusRequest) error {
	return m.Called(ctx, req).Error(0)
}

// --- helpers ---

func notificationRouter(svc *mockNotificationSvc) http.Handler {
	h := NewNotificationHandler(svc)
	r := chi.NewRouter()
	r.Get("/api/notifications/{userId}", h.ListUnread)
	r.Post("/api/notifications/markAllRead", h.MarkAllRead)
	r.Post("/api/notifications/{notificationId}/read", h.MarkRead)
	r.Post("/api/send-notification", h.Send)
	r.Post("/api/lab-status-notification", h.SendLabStatus)
	r.Post("/api/account-status-notification", h.SendAccountStatus)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- ListUnread ---

func TestListUnread_OK(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("ListUnread", mock.Anything, "u1").Return([]domain.Notification{
		{NotificationID: "b", UserID: "u1", Message: "newer"},
		{NotificationID: "a", UserID: "u1", Message: "older"},
	}, nil)

	rec := do(t, notificationRouter(svc), http.MethodGet, "/api/notifications/u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0]["id"])
	assert.Equal(t, false, got[0]["read"])
}

func TestListUnread_EmptyIsArray(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("ListUnread", mock.Anything, "u1").Return([]domain.Notification{}, nil)

	rec := do(t, notificationRouter(svc), http.MethodGet, "/api/notifications/u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListUnread_StoreError(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("ListUnread", mock.Anything, "u1").Return(nil, errors.New("throttled"))

	rec := do(t, notificationRouter(svc), http.MethodGet, "/api/notifications/u1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "throttled")
}

// --- MarkRead ---

func TestMarkRead_OK(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkRead", mock.Anything, "n1").Return(nil)

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/notifications/n1/read", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestMarkRead_NotFound(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkRead", mock.Anything, "missing").Return(fmt.Errorf("notification missing: %w", domain.ErrNotFound))

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/notifications/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- MarkAllRead ---

func TestMarkAllRead_OK(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkAllRead", mock.Anything, domain.MarkAllReadRequest{UserID: "u1"}).Return(5, nil)

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/notifications/markAllRead", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestMarkAllRead_MissingUserID(t *testing.T) {
	svc := &mockNotificationSvc{}
	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/notifications/markAllRead", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"userId is required"}`, rec.Body.String())
	svc.AssertNotCalled(t, "MarkAllRead", mock.Anything, mock.Anything)
}

func TestMarkAllRead_InvalidBody(t *testing.T) {
	rec := do(t, notificationRouter(&mockNotificationSvc{}), http.MethodPost, "/api/notifications/markAllRead", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAllRead_StoreError(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("MarkAllRead", mock.Anything, mock.Anything).Return(0, errors.New("transaction cancelled"))

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/notifications/markAllRead", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- Send ---

func TestSend_OK(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.MatchedBy(func(req domain.SendNotificationRequest) bool {
		return req.UserID == "u1" && req.Message == "hi" && req.Data["appointmentId"] == "a1"
	})).Return(nil)

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/send-notification", map[string]interface{}{
		"userId": "u1", "title": "t", "message": "hi", "data": map[string]string{"appointmentId": "a1"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification sent", rec.Body.String())
	svc.AssertExpectations(t)
}

func TestSend_KeepsExtraPayloadFields(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.MatchedBy(func(req domain.SendNotificationRequest) bool {
		return req.Message == "welcome" && req.Data["email"] == "doc@example.com"
	})).Return(nil)

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/send-notification",
		`{"message":"welcome","email":"doc@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSend_StoreErrorIsGenericText(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return(errors.New("dynamodb: throttled"))

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/send-notification", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error sending notification", rec.Body.String())
}

func TestSend_ValidationError(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return(fmt.Errorf("field 'Message' failed 'required': %w", domain.ErrBadRequest))

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/send-notification", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Lab / account status ---

func TestSendLabStatus_OK(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("SendLabStatus", mock.Anything, domain.LabStatusRequest{LabID: "lab1", Status: "approved"}).Return(nil)

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/lab-status-notification", map[string]string{"labId": "lab1", "status": "approved"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lab status notification sent", rec.Body.String())
}

func TestSendLabStatus_MissingFields(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("SendLabStatus", mock.Anything, mock.Anything).Return(fmt.Errorf("field 'LabID' failed 'required': %w", domain.ErrBadRequest))

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/lab-status-notification", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "LabID")
}

func TestSendAccountStatus_OK(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("SendAccountStatus", mock.Anything, domain.AccountStatusRequest{UserID: "d1", Status: "rejected", Remarks: "r"}).Return(nil)

	rec := do(t, notificationRouter(svc), http.MethodPost, "/api/account-status-notification",
		map[string]string{"userId": "d1", "status": "rejected", "remarks": "r"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account status notification sent", rec.Body.String())
}
