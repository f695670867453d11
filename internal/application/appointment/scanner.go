// Package appointment expires confirmed appointments whose slot is over.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/pkg/slotportion"
	"github.com/medportal-notify/internal/worker"
)

type Store interface {
	Scan(ctx context.Context) ([]domain.Appointment, error)
	TransitionStatus(ctx context.Context, appointmentID, from, to string, at time.Time) error
}

type Scanner struct {
	store Store
	grace time.Duration
	loc   *time.Location
	now   func() time.Time
}

func NewScanner(store Store, grace time.Duration, loc *time.Location, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scanner{store: store, grace: grace, loc: loc, now: now}
}

func (s *Scanner) Sweep() worker.Sweep[domain.Appointment] {
	return worker.Sweep[domain.Appointment]{
		Name:  "appointments",
		Load:  s.store.Scan,
		Key:   func(a domain.Appointment) string { return a.AppointmentID },
		Apply: s.Apply,
		Now:   s.now,
	}
}

// Expiration returns the moment a becomes expirable: the end of its slot on
// its date, plus the grace period.
func (s *Scanner) Expiration(a domain.Appointment) (time.Time, error) {
	if a.Date == "" || a.SlotPortion == "" {
		return time.Time{}, fmt.Errorf("appointment %s lacks date or slot portion: %w", a.AppointmentID, domain.ErrMalformedRecord)
	}
	day, err := slotportion.ParseDate(a.Date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment %s: %v: %w", a.AppointmentID, err, domain.ErrMalformedRecord)
	}
	end, err := slotportion.ParseEnd(a.SlotPortion)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment %s: %v: %w", a.AppointmentID, err, domain.ErrMalformedRecord)
	}
	return end.On(day, s.loc).Add(s.grace), nil
}

// Apply moves a confirmed appointment to expired once its expiration has passed.
// Any other status is left alone, so expired appointments are never written again.
func (s *Scanner) Apply(ctx context.Context, a domain.Appointment) (bool, error) {
	if a.Status != domain.AppointmentConfirmed {
		return false, nil
	}
	exp, err := s.Expiration(a)
	if err != nil {
		return false, err
	}
	now := s.now()
	if now.Before(exp) {
		return false, nil
	}

	err = s.store.TransitionStatus(ctx, a.AppointmentID, domain.AppointmentConfirmed, domain.AppointmentExpired, now)
	if errors.Is(err, domain.ErrConflict) {
		slog.Info("appointment changed since scan, not expiring", "appointment_id", a.AppointmentID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("expire appointment %s: %w", a.AppointmentID, err)
	}
	slog.Info("appointment expired", "appointment_id", a.AppointmentID, "expired_after", exp)
	return true, nil
}
