package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/pkg/id"
	"github.com/medportal-notify/internal/pkg/validate"
)

// Schedule creates the reminder set of a confirmed appointment, one entry per
// configured offset before the appointment. Entries already in the past are
// kept and fire on the next sweep.
func (s *Scanner) Schedule(ctx context.Context, req domain.ScheduleReminderRequest) (*domain.ReminderSet, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	at := req.AppointmentTime.UTC()

	rs := &domain.ReminderSet{
		ReminderSetID:   id.NewAt(now),
		AppointmentID:   req.AppointmentID,
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		DoctorName:      req.DoctorName,
		PatientName:     req.PatientName,
		AppointmentTime: at,
		Type:            req.Type,
		Reminders:       make([]domain.ReminderEntry, 0, len(s.offsets)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, off := range s.offsets {
		rs.Reminders = append(rs.Reminders, domain.ReminderEntry{
			Time:    at.Add(-off),
			Message: reminderMessage(req.Type, off),
		})
	}

	if err := s.store.Put(ctx, rs); err != nil {
		return nil, fmt.Errorf("store reminder set: %w", err)
	}
	return rs, nil
}

func reminderMessage(typ string, offset time.Duration) string {
	subject := "an appointment"
	if typ = strings.TrimSpace(typ); typ != "" {
		subject = "a " + typ + " appointment"
	}
	switch offset {
	case 24 * time.Hour:
		return fmt.Sprintf("You have %s tomorrow", subject)
	default:
		return fmt.Sprintf("You have %s in %s", subject, humanize(offset))
	}
}

// humanize renders an offset in the largest whole unit: "1 hour", "30 minutes", "2 days".
func humanize(d time.Duration) string {
	unit := func(n int64, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return unit(int64(d/(24*time.Hour)), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return unit(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return unit(int64(d/time.Minute), "minute")
	default:
		return d.String()
	}
}
