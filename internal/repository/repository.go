// Package repository declares the persistence interfaces consumed by the
// service and reminder layers. The sqlite subpackage is the production
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/plantcare/internal/model"
)

type GardenRepository interface {
	Create(ctx context.Context, entry *model.GardenEntry) error
	GetByID(ctx context.Context, id string) (*model.GardenEntry, error)
	// ListByOwner returns the owner's entries, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.GardenEntry, error)
	// ListDueBefore returns every entry whose NextWatering is at or before t.
	ListDueBefore(ctx context.Context, t time.Time) ([]model.GardenEntry, error)
	// ListScheduled returns every entry with a watering schedule, across all
	// owners. Used to reconstruct timers after a restart.
	ListScheduled(ctx context.Context) ([]model.GardenEntry, error)
	// UpdateWatering overwrites both schedule timestamps, as happens on an
	// explicit mark-watered action.
	UpdateWatering(ctx context.Context, id string, lastWatered, nextWatering time.Time) error
	// AdvanceSchedule moves NextWatering forward only if it still equals
	// expect — a compare-and-update so a reminder pass never clobbers a
	// concurrent user-initiated watering. Returns false (no error) when the
	// value changed underneath us.
	AdvanceSchedule(ctx context.Context, id string, expect, next time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetNotificationTarget resolves an owner to a delivery address and
	// opt-in flag. Returns apperror.ErrNotFound when the owner is gone.
	GetNotificationTarget(ctx context.Context, ownerID string) (*model.NotificationTarget, error)
	// AddPlantCount adjusts the owner's aggregate plant count by delta
	// (+1 on add, -1 on delete).
	AddPlantCount(ctx context.Context, id string, delta int) error
	IncrementTasksCompleted(ctx context.Context, id string) error
	// AppendActivity records a recent-activity item, keeping only the most
	// recent model.RecentActivityLimit entries.
	AppendActivity(ctx context.Context, id, text string, at time.Time) error
	// RecentActivity returns the trimmed feed, newest first.
	RecentActivity(ctx context.Context, id string) ([]model.Activity, error)
}
