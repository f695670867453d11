// Package worker runs the periodic sweeps that drive time-based state transitions.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medportal-notify/internal/domain"
)

// Report summarises one sweep run.
type Report struct {
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Scanned   int           `json:"scanned"`
	Changed   int           `json:"changed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Malformed []string      `json:"malformed,omitempty"`
}

// Sweep loads candidate records and applies one transition to each.
// Apply reports whether it changed the record. An error wrapping
// domain.ErrMalformedRecord counts the record as skipped, any other error as
// failed; neither stops the sweep.
type Sweep[T any] struct {
	Name  string
	Load  func(ctx context.Context) ([]T, error)
	Key   func(T) string
	Apply func(ctx context.Context, rec T) (bool, error)
	Now   func() time.Time
}

// Run executes the sweep once. Only a Load failure aborts it.
func (s Sweep[T]) Run(ctx context.Context) (Report, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rep := Report{Name: s.Name, StartedAt: now()}

	records, err := s.Load(ctx)
	if err != nil {
		return rep, fmt.Errorf("%s: load: %w", s.Name, err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			rep.Duration = now().Sub(rep.StartedAt)
			return rep, fmt.Errorf("%s: interrupted after %d records: %w", s.Name, rep.Scanned, err)
		}
		rep.Scanned++
		key := s.Key(rec)

		changed, err := s.Apply(ctx, rec)
		switch {
		case errors.Is(err, domain.ErrMalformedRecord):
			slog.Warn("skipping malformed record", "sweep", s.Name, "key", key, "err", err)
			rep.Skipped++
			rep.Malformed = append(rep.Malformed, key)
		case err != nil:
			slog.Error("record transition failed", "sweep", s.Name, "key", key, "err", err)
			rep.Failed++
		case changed:
			rep.Changed++
		}
	}

	rep.Duration = now().Sub(rep.StartedAt)
	return rep, nil
}
