package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/plantcare/internal/apperror"
	"github.com/sakif/plantcare/internal/model"
	"github.com/sakif/plantcare/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. Account provisioning itself (signup,
// verification) happens upstream; this exists so the upstream layer — and
// tests — can materialise users in the same store the garden references.
// A caller-supplied ID is kept (the auth layer mints its own identifiers);
// an xid is generated only when the ID is empty.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, notifications, total_plants, tasks_completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.Notifications,
		user.TotalPlants,
		user.TasksCompleted,
		toUnixNano(user.CreatedAt),
		toUnixNano(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var createdAt, updatedAt int64

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, notifications, total_plants, tasks_completed, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Notifications,
		&u.TotalPlants,
		&u.TasksCompleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	u.CreatedAt = fromUnixNano(createdAt)
	u.UpdatedAt = fromUnixNano(updatedAt)
	return &u, nil
}

// GetNotificationTarget reads just the fields the reminder engine needs.
func (db *DB) GetNotificationTarget(ctx context.Context, ownerID string) (*model.NotificationTarget, error) {
	var t model.NotificationTarget

	err := db.conn.QueryRowContext(ctx,
		`SELECT name, email, notifications FROM users WHERE id = ?`,
		ownerID,
	).Scan(&t.Name, &t.Address, &t.Enabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", ownerID)
		}
		return nil, fmt.Errorf("sqlite: getting notification target %s: %w", ownerID, err)
	}

	return &t, nil
}

// AddPlantCount adjusts total_plants by delta, clamped at zero so a
// replayed delete can't drive the count negative.
func (db *DB) AddPlantCount(ctx context.Context, id string, delta int) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET total_plants = MAX(0, total_plants + ?), updated_at = ? WHERE id = ?`,
		delta, toUnixNano(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adjusting plant count for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// IncrementTasksCompleted bumps the completed-tasks counter (one per
// mark-watered action).
func (db *DB) IncrementTasksCompleted(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET tasks_completed = tasks_completed + 1, updated_at = ? WHERE id = ?`,
		toUnixNano(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing tasks for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// AppendActivity records a recent-activity item and trims the feed to the
// most recent model.RecentActivityLimit entries.
func (db *DB) AppendActivity(ctx context.Context, id, text string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activities (user_id, text, at) VALUES (?, ?, ?)`,
		id, text, toUnixNano(at),
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending activity for %s: %w", id, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`DELETE FROM activities
		 WHERE user_id = ?
		   AND id NOT IN (
		       SELECT id FROM activities WHERE user_id = ? ORDER BY id DESC LIMIT ?
		   )`,
		id, id, model.RecentActivityLimit,
	)
	if err != nil {
		return fmt.Errorf("sqlite: trimming activity for %s: %w", id, err)
	}
	return nil
}

// RecentActivity returns the user's activity feed, newest first.
func (db *DB) RecentActivity(ctx context.Context, id string) ([]model.Activity, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT text, at FROM activities WHERE user_id = ? ORDER BY id DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activity for %s: %w", id, err)
	}
	defer rows.Close()

	items := make([]model.Activity, 0, model.RecentActivityLimit)
	for rows.Next() {
		var a model.Activity
		var at int64
		if err := rows.Scan(&a.Text, &at); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		a.Time = fromUnixNano(at)
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activity rows: %w", err)
	}
	return items, nil
}
