// Package reminder decides when plants are due for water and notifies their
// owners.
//
// Two delivery strategies share one Engine core:
//
//   - Sweep: an external or internal periodic trigger calls RunSweepTick,
//     which scans every entry whose deadline has passed. Stateless between
//     ticks — all state lives in the store — so it survives restarts for free.
//   - Timer: TimerScheduler keeps one pending time.Timer per entry and
//     re-arms it after every firing. Timers are in-memory only; Recover
//     rebuilds them from the persisted schedule at startup.
//
// Both give the same contract: at most one notification per due window, a
// silent skip for missing or opted-out owners, per-entry failure isolation,
// and a schedule that always moves forward whether or not the send worked.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/plantcare/internal/apperror"
	"github.com/sakif/plantcare/internal/care"
	"github.com/sakif/plantcare/internal/model"
	"github.com/sakif/plantcare/internal/notify"
	"github.com/sakif/plantcare/internal/repository"
)

const defaultSendTimeout = 15 * time.Second

// Engine owns the eligibility and rescheduling rules for due entries.
type Engine struct {
	gardens     repository.GardenRepository
	users       repository.UserRepository
	notifier    notify.Notifier
	logger      *slog.Logger
	sendTimeout time.Duration
	now         func() time.Time // swapped out in tests
}

func NewEngine(
	gardens repository.GardenRepository,
	users repository.UserRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
	sendTimeout time.Duration,
) *Engine {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Engine{
		gardens:     gardens,
		users:       users,
		notifier:    notifier,
		logger:      logger,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// SweepReport summarises one sweep tick.
type SweepReport struct {
	Due     int `json:"due"`     // entries whose deadline had passed
	Sent    int `json:"sent"`    // reminders delivered
	Skipped int `json:"skipped"` // owner missing or notifications disabled
	Failed  int `json:"failed"`  // delivery attempted and failed (still rescheduled)
	Errors  int `json:"errors"`  // infrastructure errors; entry left due for the next tick
}

// RunSweepTick processes every entry due at the time of the call.
//
// Entries are handled independently: a delivery failure or a store hiccup
// on one entry never aborts the rest of the batch. Owner lookups are cached
// for the duration of the tick, so a user with twenty thirsty plants costs
// one query. Fan-out is sequential — deliberate, to avoid hammering the
// outbound mail relay.
//
// A returned error means the due-list query itself failed; the caller logs
// it and simply waits for the next tick.
func (e *Engine) RunSweepTick(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	now := e.now()
	due, err := e.gardens.ListDueBefore(ctx, now)
	if err != nil {
		return report, fmt.Errorf("reminder: listing due entries: %w", err)
	}
	report.Due = len(due)

	targets := make(map[string]*model.NotificationTarget)
	for i := range due {
		res, _, err := e.processDue(ctx, &due[i], now, targets)
		switch {
		case err != nil:
			report.Errors++
		case res == outcomeSent:
			report.Sent++
		case res == outcomeSendFailed:
			report.Failed++
		case res == outcomeSkipped:
			report.Skipped++
		}
	}

	if report.Due > 0 {
		e.logger.Info("sweep tick completed",
			slog.Int("due", report.Due),
			slog.Int("sent", report.Sent),
			slog.Int("skipped", report.Skipped),
			slog.Int("failed", report.Failed),
			slog.Int("errors", report.Errors),
		)
	}
	return report, nil
}

// FireEntry processes a single entry, for the timer strategy. It returns
// the next deadline to arm a timer for.
//
// A timer firing is only a hint that the entry might be due — the store is
// re-read first, so a stale fire (the user watered while the timer was
// pending) re-arms for the fresh deadline without sending anything.
//
// Returns apperror.ErrNotFound when the entry no longer exists (stop
// scheduling it), or a wrapped infrastructure error (retry shortly).
func (e *Engine) FireEntry(ctx context.Context, id string) (time.Time, error) {
	entry, err := e.gardens.GetByID(ctx, id)
	if err != nil {
		return time.Time{}, err
	}

	now := e.now()
	if entry.NextWatering.After(now) {
		// Not actually due yet. No notification — that would break
		// at-most-once per due window.
		return entry.NextWatering, nil
	}

	res, next, err := e.processDue(ctx, entry, now, nil)
	if err != nil {
		return time.Time{}, err
	}
	if res == outcomeGone {
		return time.Time{}, apperror.NotFound("plant", id)
	}
	if next.IsZero() {
		// Lost the advance race to a concurrent mark-watered; the user's
		// fresh schedule is authoritative.
		fresh, err := e.gardens.GetByID(ctx, id)
		if err != nil {
			return time.Time{}, err
		}
		return fresh.NextWatering, nil
	}
	return next, nil
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeSkipped
	outcomeSendFailed
	outcomeGone
)

// processDue notifies (if eligible) and advances one due entry.
//
// The returned next time is zero when the entry's deadline is no longer
// ours to advance (compare-and-update lost to a concurrent watering). A
// non-nil error marks an infrastructure failure: nothing was advanced and
// the entry stays due for the next invocation.
func (e *Engine) processDue(
	ctx context.Context,
	entry *model.GardenEntry,
	now time.Time,
	cache map[string]*model.NotificationTarget,
) (outcome, time.Time, error) {
	target, err := e.lookupTarget(ctx, entry.OwnerID, cache)
	if err != nil {
		e.logger.Error("owner lookup failed, leaving entry due",
			slog.String("plantId", entry.ID),
			slog.String("ownerId", entry.OwnerID),
			slog.String("error", err.Error()),
		)
		return outcomeSkipped, time.Time{}, fmt.Errorf("reminder: looking up owner %s: %w", entry.OwnerID, err)
	}

	res := outcomeSkipped
	if target != nil && target.Enabled {
		res = e.deliver(ctx, *target, entry)
	}

	// Reschedule regardless of delivery outcome: best-effort notification,
	// reliable scheduling. The new deadline is derived fresh from the
	// current care text and LastWatered, landing strictly after now so an
	// ignored reminder doesn't repeat every tick.
	days := care.IntervalDays(entry.Care.Water)
	next := care.AdvanceAfter(entry.LastWatered, days, now)

	advanced, err := e.gardens.AdvanceSchedule(ctx, entry.ID, entry.NextWatering, next)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return outcomeGone, time.Time{}, nil
		}
		e.logger.Error("schedule advance failed, leaving entry due",
			slog.String("plantId", entry.ID),
			slog.String("error", err.Error()),
		)
		return res, time.Time{}, fmt.Errorf("reminder: advancing schedule for %s: %w", entry.ID, err)
	}
	if !advanced {
		return res, time.Time{}, nil
	}
	return res, next, nil
}

// deliver attempts one notification with a bounded timeout. No store locks
// are held here — delivery is the only blocking step and it must never
// gate another entry's processing.
func (e *Engine) deliver(ctx context.Context, target model.NotificationTarget, entry *model.GardenEntry) outcome {
	sctx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	if err := e.notifier.SendWateringReminder(sctx, target, entry); err != nil {
		e.logger.Warn("reminder delivery failed",
			slog.String("plantId", entry.ID),
			slog.String("plant", entry.CommonName),
			slog.String("to", target.Address),
			slog.String("error", err.Error()),
		)
		return outcomeSendFailed
	}

	e.logger.Info("reminder sent",
		slog.String("plantId", entry.ID),
		slog.String("plant", entry.CommonName),
		slog.String("to", target.Address),
	)
	return outcomeSent
}

// lookupTarget resolves an owner, consulting cache when provided. A missing
// owner is cached as nil and reported as (nil, nil) — an orphaned entry is
// skipped, not an error.
func (e *Engine) lookupTarget(
	ctx context.Context,
	ownerID string,
	cache map[string]*model.NotificationTarget,
) (*model.NotificationTarget, error) {
	if cache != nil {
		if target, ok := cache[ownerID]; ok {
			return target, nil
		}
	}

	target, err := e.users.GetNotificationTarget(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			if cache != nil {
				cache[ownerID] = nil
			}
			return nil, nil
		}
		return nil, err
	}

	if cache != nil {
		cache[ownerID] = target
	}
	return target, nil
}
