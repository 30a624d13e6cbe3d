// Package service contains the business logic layer: validation, ownership
// rules, and orchestration between the store, the notifier, and the
// reminder scheduler. It knows nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/plantcare/internal/apperror"
	"github.com/sakif/plantcare/internal/care"
	"github.com/sakif/plantcare/internal/model"
	"github.com/sakif/plantcare/internal/notify"
	"github.com/sakif/plantcare/internal/reminder"
	"github.com/sakif/plantcare/internal/repository"
)

const (
	MaxNameLength     = 200
	MaxCareTextLength = 500
)

// Scheduler is how the service tells the reminder side about lifecycle
// events. The timer strategy needs all three hooks to keep its in-process
// timers honest; the sweep strategy needs none (it re-reads the store every
// tick), so sweep mode plugs in NopScheduler.
type Scheduler interface {
	OnPlantAdded(entry *model.GardenEntry)
	OnMarkWatered(entry *model.GardenEntry)
	OnPlantDeleted(id string)
}

// NopScheduler ignores all lifecycle events.
type NopScheduler struct{}

func (NopScheduler) OnPlantAdded(*model.GardenEntry)  {}
func (NopScheduler) OnMarkWatered(*model.GardenEntry) {}
func (NopScheduler) OnPlantDeleted(string)            {}

// Compile-time checks that both scheduler strategies satisfy the interface.
var (
	_ Scheduler = NopScheduler{}
	_ Scheduler = (*reminder.TimerScheduler)(nil)
)

// GardenService handles the garden lifecycle: add, list, mark watered,
// remove — and keeps the owner's statistics and activity feed current.
type GardenService struct {
	gardens   repository.GardenRepository
	users     repository.UserRepository
	notifier  notify.Notifier
	scheduler Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

func NewGardenService(
	gardens repository.GardenRepository,
	users repository.UserRepository,
	notifier notify.Notifier,
	scheduler Scheduler,
	logger *slog.Logger,
) *GardenService {
	return &GardenService{
		gardens:   gardens,
		users:     users,
		notifier:  notifier,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

// AddPlant commits an identified plant to the owner's garden.
//
// The initial schedule is derived here: LastWatered is the creation time
// and NextWatering follows from the care text. The confirmation email is
// best-effort — a mail failure never fails the add.
func (s *GardenService) AddPlant(ctx context.Context, ownerID string, plant model.IdentifiedPlant) (*model.GardenEntry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner id is required")
	}
	plant.CommonName = strings.TrimSpace(plant.CommonName)
	if plant.CommonName == "" {
		return nil, apperror.ValidationFailed("commonName", "plant name is required")
	}
	if len(plant.CommonName) > MaxNameLength {
		return nil, apperror.ValidationFailed("commonName",
			fmt.Sprintf("plant name must be %d characters or less", MaxNameLength))
	}
	if len(plant.Care.Water) > MaxCareTextLength {
		return nil, apperror.ValidationFailed("care.water",
			fmt.Sprintf("care description must be %d characters or less", MaxCareTextLength))
	}
	if plant.Confidence < 0 || plant.Confidence > 100 {
		return nil, apperror.ValidationFailed("confidence", "confidence must be between 0 and 100")
	}

	// Owner must exist before we hang an entry off them.
	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	now := s.now()
	days := care.IntervalDays(plant.Care.Water)
	entry := &model.GardenEntry{
		OwnerID:        ownerID,
		CommonName:     plant.CommonName,
		ScientificName: strings.TrimSpace(plant.ScientificName),
		Confidence:     plant.Confidence,
		Family:         strings.TrimSpace(plant.Family),
		Care:           plant.Care,
		LastWatered:    now,
		NextWatering:   care.NextDue(now, days),
		AddedAt:        now,
	}

	if err := s.gardens.Create(ctx, entry); err != nil {
		s.logger.Error("failed to add plant",
			slog.String("ownerId", ownerID),
			slog.String("plant", plant.CommonName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding plant: %w", err)
	}

	s.scheduler.OnPlantAdded(entry)
	s.recordActivity(ctx, ownerID, fmt.Sprintf("Added %s to garden", entry.CommonName), now)
	if err := s.users.AddPlantCount(ctx, ownerID, 1); err != nil {
		s.logger.Error("failed to bump plant count",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
	}
	s.sendAdditionMail(ctx, entry)

	s.logger.Info("plant added",
		slog.String("id", entry.ID),
		slog.String("ownerId", ownerID),
		slog.String("plant", entry.CommonName),
		slog.Int("intervalDays", days),
	)
	return entry, nil
}

// Garden lists the owner's entries, newest first.
func (s *GardenService) Garden(ctx context.Context, ownerID string) ([]model.GardenEntry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner id is required")
	}

	entries, err := s.gardens.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list garden",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing garden: %w", err)
	}
	return entries, nil
}

// ProfileStats is the dashboard summary for one user: aggregate counters
// maintained by the garden operations plus the trimmed activity feed.
type ProfileStats struct {
	TotalPlants    int              `json:"totalPlants"`
	TasksCompleted int              `json:"tasksCompleted"`
	RecentActivity []model.Activity `json:"recentActivity"`
}

// Stats returns the owner's profile statistics.
func (s *GardenService) Stats(ctx context.Context, ownerID string) (*ProfileStats, error) {
	user, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	activity, err := s.users.RecentActivity(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list recent activity",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}

	return &ProfileStats{
		TotalPlants:    user.TotalPlants,
		TasksCompleted: user.TasksCompleted,
		RecentActivity: activity,
	}, nil
}

// MarkWatered records an explicit watering action: LastWatered becomes now
// and NextWatering is recomputed from now — never compounded from the
// previous deadline, so watering twice in quick succession anchors the
// schedule at the second action.
func (s *GardenService) MarkWatered(ctx context.Context, ownerID, id string) (*model.GardenEntry, error) {
	entry, err := s.ownedEntry(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	days := care.IntervalDays(entry.Care.Water)
	entry.LastWatered = now
	entry.NextWatering = care.NextDue(now, days)

	if err := s.gardens.UpdateWatering(ctx, entry.ID, entry.LastWatered, entry.NextWatering); err != nil {
		s.logger.Error("failed to mark watered",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("marking watered: %w", err)
	}

	s.scheduler.OnMarkWatered(entry)
	if err := s.users.IncrementTasksCompleted(ctx, ownerID); err != nil {
		s.logger.Error("failed to bump tasks completed",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("plant watered",
		slog.String("id", entry.ID),
		slog.String("plant", entry.CommonName),
		slog.Time("nextWatering", entry.NextWatering),
	)
	return entry, nil
}

// Remove deletes an entry from the owner's garden, cancels any pending
// reminder for it, and decrements the owner's plant count.
func (s *GardenService) Remove(ctx context.Context, ownerID, id string) error {
	entry, err := s.ownedEntry(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.gardens.Delete(ctx, id); err != nil {
		return err
	}

	s.scheduler.OnPlantDeleted(id)
	if err := s.users.AddPlantCount(ctx, ownerID, -1); err != nil {
		s.logger.Error("failed to decrement plant count",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("plant removed",
		slog.String("id", id),
		slog.String("plant", entry.CommonName),
		slog.String("ownerId", ownerID),
	)
	return nil
}

// ownedEntry fetches an entry and verifies the caller owns it. A foreign
// entry yields ErrForbidden — never the entry itself.
func (s *GardenService) ownedEntry(ctx context.Context, ownerID, id string) (*model.GardenEntry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner id is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "plant id is required")
	}

	entry, err := s.gardens.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.OwnerID != ownerID {
		return nil, apperror.Forbidden("plant belongs to another user")
	}
	return entry, nil
}

func (s *GardenService) recordActivity(ctx context.Context, ownerID, text string, at time.Time) {
	if err := s.users.AppendActivity(ctx, ownerID, text, at); err != nil {
		s.logger.Error("failed to record activity",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
	}
}

// sendAdditionMail delivers the "added to your garden" confirmation.
// Failures are logged and swallowed — same policy as reminders.
func (s *GardenService) sendAdditionMail(ctx context.Context, entry *model.GardenEntry) {
	target, err := s.users.GetNotificationTarget(ctx, entry.OwnerID)
	if err != nil || !target.Enabled {
		return
	}
	if err := s.notifier.SendGardenAddition(ctx, *target, entry); err != nil {
		s.logger.Warn("garden addition email failed",
			slog.String("ownerId", entry.OwnerID),
			slog.String("error", err.Error()),
		)
	}
}
