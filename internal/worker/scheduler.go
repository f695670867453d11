package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLockNotAcquired is returned by a Locker when another instance holds the lock.
var ErrLockNotAcquired = errors.New("sweep lock not acquired")

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (Report, error)
}

// Locker serialises a job across instances.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Reporter receives every completed report.
type Reporter interface {
	Archive(ctx context.Context, rep Report) error
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Scheduler runs each job once at startup and then on its own ticker.
type Scheduler struct {
	timeout  time.Duration
	locker   Locker
	reporter Reporter

	jobs    []*scheduled
	wg      sync.WaitGroup
	running sync.WaitGroup
}

type scheduled struct {
	Job
	busy atomic.Bool
}

type Option func(*Scheduler)

// WithLocker guards every run with the given cross-instance lock.
func WithLocker(l Locker) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithReporter hands reports that contain malformed records to r.
func WithReporter(r Reporter) Option {
	return func(s *Scheduler) { s.reporter = r }
}

func NewScheduler(timeout time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{timeout: timeout, locker: noopLocker{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, &scheduled{Job: job})
}

// Start launches one loop per job. Loops stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
}

// Wait blocks until every loop and in-flight run has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
	s.running.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j *scheduled) {
	defer s.wg.Done()
	slog.Info("sweep scheduled", "job", j.Name, "interval", j.Interval)

	s.trigger(ctx, j)

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep stopped", "job", j.Name)
			return
		case <-ticker.C:
			s.trigger(ctx, j)
		}
	}
}

// trigger starts a run unless the previous one is still in flight.
// It reports whether a run was started.
func (s *Scheduler) trigger(ctx context.Context, j *scheduled) bool {
	if !j.busy.CompareAndSwap(false, true) {
		slog.Warn("previous sweep still running, skipping tick", "job", j.Name)
		return false
	}
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		defer j.busy.Store(false)
		s.runOnce(ctx, j)
	}()
	return true
}

func (s *Scheduler) runOnce(ctx context.Context, j *scheduled) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rep Report
	err := s.locker.WithLock(runCtx, "sweep:"+j.Name, func(ctx context.Context) error {
		var runErr error
		rep, runErr = j.Run(ctx)
		return runErr
	})
	switch {
	case errors.Is(err, ErrLockNotAcquired):
		slog.Debug("sweep held by another instance", "job", j.Name)
		return
	case err != nil:
		slog.Error("sweep run failed", "job", j.Name, "err", err)
		return
	}

	slog.Info("sweep complete",
		"job", j.Name,
		"scanned", rep.Scanned,
		"changed", rep.Changed,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
		"duration", rep.Duration,
	)

	if s.reporter != nil && len(rep.Malformed) > 0 {
		if err := s.reporter.Archive(runCtx, rep); err != nil {
			slog.Warn("could not archive sweep report", "job", j.Name, "err", err)
		}
	}
}
