// Package reminder schedules appointment reminders and fires them when due.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/worker"
)

const reminderTitle = "Appointment Reminder"

// Store is the reminder-set persistence the scanner and scheduler need.
type Store interface {
	Put(ctx context.Context, s *domain.ReminderSet) error
	Scan(ctx context.Context) ([]domain.ReminderSet, error)
	UpdateReminders(ctx context.Context, reminderSetID string, entries []domain.ReminderEntry) error
}

// Notifier persists and pushes one notification.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, typ string) (*domain.Notification, error)
}

type Scanner struct {
	store    Store
	notifier Notifier
	offsets  []time.Duration
	now      func() time.Time
}

func NewScanner(store Store, notifier Notifier, offsets []time.Duration, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	return &Scanner{store: store, notifier: notifier, offsets: offsets, now: now}
}

// Sweep returns the periodic job that fires due reminders.
func (s *Scanner) Sweep() worker.Sweep[domain.ReminderSet] {
	return worker.Sweep[domain.ReminderSet]{
		Name:  "reminders",
		Load:  s.store.Scan,
		Key:   func(rs domain.ReminderSet) string { return rs.ReminderSetID },
		Apply: s.Apply,
		Now:   s.now,
	}
}

// Apply fires every due entry of rs, to the doctor and to the patient, and
// writes the entry list back once when anything changed. An entry is marked
// sent even when its dispatch fails.
func (s *Scanner) Apply(ctx context.Context, rs domain.ReminderSet) (bool, error) {
	now := s.now()
	entries := make([]domain.ReminderEntry, len(rs.Reminders))
	copy(entries, rs.Reminders)

	changed := false
	malformed := 0
	for i, e := range entries {
		if e.Sent {
			continue
		}
		if e.Time.IsZero() {
			malformed++
			continue
		}
		if !e.Due(now) {
			continue
		}
		s.dispatch(ctx, rs, e)
		entries[i].Sent = true
		changed = true
	}

	if changed {
		if err := s.store.UpdateReminders(ctx, rs.ReminderSetID, entries); err != nil {
			return false, fmt.Errorf("write back reminders of %s: %w", rs.ReminderSetID, err)
		}
	}
	if malformed > 0 {
		err := fmt.Errorf("%d reminder entries without a trigger time: %w", malformed, domain.ErrMalformedRecord)
		if !changed {
			return false, err
		}
		slog.Warn("reminder set partly malformed", "reminder_set_id", rs.ReminderSetID, "err", err)
	}
	return changed, nil
}

func (s *Scanner) dispatch(ctx context.Context, rs domain.ReminderSet, e domain.ReminderEntry) {
	if _, err := s.notifier.Notify(ctx, rs.DoctorID, reminderTitle,
		fmt.Sprintf("%s with %s", e.Message, rs.PatientName), domain.TypeAppointment); err != nil {
		slog.Error("doctor reminder failed", "reminder_set_id", rs.ReminderSetID, "doctor_id", rs.DoctorID, "err", err)
	}
	if _, err := s.notifier.Notify(ctx, rs.PatientID, reminderTitle,
		fmt.Sprintf("%s with Dr. %s", e.Message, rs.DoctorName), domain.TypeAppointment); err != nil {
		slog.Error("patient reminder failed", "reminder_set_id", rs.ReminderSetID, "patient_id", rs.PatientID, "err", err)
	}
}
