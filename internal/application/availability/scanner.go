// Package availability deletes doctor availability slots once they are over.
package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/pkg/slotportion"
	"github.com/medportal-notify/internal/worker"
)

type DoctorLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

type Store interface {
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.Availability, error)
	Delete(ctx context.Context, doctorID, availabilityID string) error
}

type Scanner struct {
	doctors DoctorLister
	store   Store
	grace   time.Duration
	loc     *time.Location
	now     func() time.Time
}

func NewScanner(doctors DoctorLister, store Store, grace time.Duration, loc *time.Location, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scanner{doctors: doctors, store: store, grace: grace, loc: loc, now: now}
}

func (s *Scanner) Sweep() worker.Sweep[domain.Availability] {
	return worker.Sweep[domain.Availability]{
		Name:  "availabilities",
		Load:  s.load,
		Key:   func(a domain.Availability) string { return a.DoctorID + "/" + a.AvailabilityID },
		Apply: s.Apply,
		Now:   s.now,
	}
}

// load lists the slots of every doctor. A doctor whose slots cannot be listed
// is logged and left for the next run.
func (s *Scanner) load(ctx context.Context) ([]domain.Availability, error) {
	ids, err := s.doctors.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	var slots []domain.Availability
	for _, doctorID := range ids {
		batch, err := s.store.ListByDoctor(ctx, doctorID)
		if err != nil {
			slog.Error("could not list availabilities", "doctor_id", doctorID, "err", err)
			continue
		}
		for i := range batch {
			if batch[i].DoctorID == "" {
				batch[i].DoctorID = doctorID
			}
		}
		slots = append(slots, batch...)
	}
	return slots, nil
}

// Apply deletes a once the grace period after its end has passed.
func (s *Scanner) Apply(ctx context.Context, a domain.Availability) (bool, error) {
	if a.EndTime == "" {
		return false, fmt.Errorf("availability %s has no end time: %w", a.AvailabilityID, domain.ErrMalformedRecord)
	}
	end, err := slotportion.At(a.Date, a.EndTime, s.loc)
	if err != nil {
		return false, fmt.Errorf("availability %s: %v: %w", a.AvailabilityID, err, domain.ErrMalformedRecord)
	}
	if s.now().Before(end.Add(s.grace)) {
		return false, nil
	}
	if err := s.store.Delete(ctx, a.DoctorID, a.AvailabilityID); err != nil {
		return false, fmt.Errorf("delete availability %s: %w", a.AvailabilityID, err)
	}
	slog.Info("deleted expired availability", "doctor_id", a.DoctorID, "availability_id", a.AvailabilityID, "ended_at", end)
	return true, nil
}
