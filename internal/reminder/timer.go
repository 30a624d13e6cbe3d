package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/plantcare/internal/apperror"
	"github.com/sakif/plantcare/internal/model"
)

const (
	// Upper bound on one firing: store reads, one delivery, one write.
	fireTimeout = 30 * time.Second
	// Re-arm delay after an infrastructure failure during a firing.
	fireRetryDelay = time.Minute
)

// TimerScheduler implements the per-entry timer strategy: exactly one
// pending time.Timer per garden entry, re-armed after every firing.
//
// The timers map is the single registry of pending work, guarded by mu.
// Scheduling an entry that already has a timer stops the old one first, so
// two live timers for one entry — and therefore duplicate notifications —
// cannot exist. All timers are lost on process exit; call Recover at
// startup to rebuild them from the store.
type TimerScheduler struct {
	engine *Engine
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	wg     sync.WaitGroup // in-flight firings
}

func NewTimerScheduler(engine *Engine, logger *slog.Logger) *TimerScheduler {
	return &TimerScheduler{
		engine: engine,
		logger: logger,
		timers: make(map[string]*time.Timer),
	}
}

// Recover rebuilds timers for every persisted schedule. Required after any
// restart — without it, pending reminders would be silently lost. Entries
// already overdue fire immediately.
func (s *TimerScheduler) Recover(ctx context.Context) error {
	entries, err := s.engine.gardens.ListScheduled(ctx)
	if err != nil {
		return apperror.Unavailable(err, "could not reload watering schedules")
	}

	now := s.engine.now()
	overdue := 0
	for i := range entries {
		at := entries[i].NextWatering
		if !at.After(now) {
			at = now
			overdue++
		}
		s.schedule(entries[i].ID, at)
	}

	s.logger.Info("watering timers recovered",
		slog.Int("scheduled", len(entries)),
		slog.Int("overdue", overdue),
	)
	return nil
}

// OnPlantAdded arms the initial timer for a new entry.
func (s *TimerScheduler) OnPlantAdded(entry *model.GardenEntry) {
	s.schedule(entry.ID, entry.NextWatering)
}

// OnMarkWatered replaces the entry's pending timer with one for the fresh
// deadline. The old timer is cancelled first — watering early must not
// leave the stale reminder armed.
func (s *TimerScheduler) OnMarkWatered(entry *model.GardenEntry) {
	s.schedule(entry.ID, entry.NextWatering)
}

// OnPlantDeleted cancels the entry's pending timer, if any.
func (s *TimerScheduler) OnPlantDeleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Close cancels every pending timer and waits for in-flight firings to
// finish. The scheduler is unusable afterwards.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("timer scheduler stopped")
}

// Pending reports how many timers are currently armed.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *TimerScheduler) schedule(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if old, ok := s.timers[id]; ok {
		old.Stop()
	}

	d := at.Sub(s.engine.now())
	if d < 0 {
		d = 0
	}
	s.timers[id] = time.AfterFunc(d, func() { s.fire(id) })
}

// fire runs in the timer's own goroutine when a deadline passes.
func (s *TimerScheduler) fire(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	next, err := s.engine.FireEntry(ctx, id)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		// Entry deleted between arming and firing. Nothing left to do.
		return
	case err != nil:
		s.logger.Error("timer firing failed, retrying shortly",
			slog.String("plantId", id),
			slog.String("error", err.Error()),
		)
		s.schedule(id, s.engine.now().Add(fireRetryDelay))
		return
	}

	s.schedule(id, next)
}
