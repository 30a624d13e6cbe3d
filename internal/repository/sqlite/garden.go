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

// compile-time check that *DB implements repository.GardenRepository
var _ repository.GardenRepository = (*DB)(nil)

const gardenColumns = `id, owner_id, common_name, scientific_name, confidence, family,
	care_water, care_light, care_soil, care_temp, care_toxic,
	last_watered, next_watering, added_at`

// Create inserts a garden entry. The entry's ID is generated here (xid:
// short, URL-safe, sortable by creation time); AddedAt is stamped if the
// caller left it zero. LastWatered and NextWatering must already be set by
// the service layer — the store never derives schedules.
func (db *DB) Create(ctx context.Context, entry *model.GardenEntry) error {
	entry.ID = xid.New().String()
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO gardens (`+gardenColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OwnerID,
		entry.CommonName,
		entry.ScientificName,
		entry.Confidence,
		entry.Family,
		entry.Care.Water,
		entry.Care.Light,
		entry.Care.Soil,
		entry.Care.Temp,
		entry.Care.Toxic,
		toUnixNano(entry.LastWatered),
		toUnixNano(entry.NextWatering),
		toUnixNano(entry.AddedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating garden entry: %w", err)
	}

	return nil
}

func scanEntry(scan func(dest ...any) error) (*model.GardenEntry, error) {
	var e model.GardenEntry
	var lastWatered, nextWatering, addedAt int64
	err := scan(
		&e.ID,
		&e.OwnerID,
		&e.CommonName,
		&e.ScientificName,
		&e.Confidence,
		&e.Family,
		&e.Care.Water,
		&e.Care.Light,
		&e.Care.Soil,
		&e.Care.Temp,
		&e.Care.Toxic,
		&lastWatered,
		&nextWatering,
		&addedAt,
	)
	if err != nil {
		return nil, err
	}
	e.LastWatered = fromUnixNano(lastWatered)
	e.NextWatering = fromUnixNano(nextWatering)
	e.AddedAt = fromUnixNano(addedAt)
	return &e, nil
}

// GetByID retrieves a single garden entry.
// Returns apperror.ErrNotFound if no entry exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.GardenEntry, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gardenColumns+` FROM gardens WHERE id = ?`, id)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("plant", id)
		}
		return nil, fmt.Errorf("sqlite: getting garden entry %s: %w", id, err)
	}
	return entry, nil
}

// ListByOwner returns all of one owner's entries, newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.GardenEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gardenColumns+` FROM gardens
		 WHERE owner_id = ?
		 ORDER BY added_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing garden for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListDueBefore returns every entry, across all owners, whose next watering
// deadline is at or before t. This is the sweep's working set.
func (db *DB) ListDueBefore(ctx context.Context, t time.Time) ([]model.GardenEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gardenColumns+` FROM gardens
		 WHERE next_watering <= ?
		 ORDER BY owner_id, next_watering`,
		toUnixNano(t),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing due entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListScheduled returns every entry with a schedule. Used once at startup
// by the timer scheduler to rebuild its in-memory timers — the durable
// next_watering column is the source of truth across restarts.
func (db *DB) ListScheduled(ctx context.Context) ([]model.GardenEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gardenColumns+` FROM gardens ORDER BY next_watering`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing scheduled entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]model.GardenEntry, error) {
	entries := make([]model.GardenEntry, 0, 16)
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning garden row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating garden rows: %w", err)
	}
	return entries, nil
}

// UpdateWatering overwrites both schedule timestamps. Used by the explicit
// mark-watered action, which owns the right to reset the schedule anchor.
func (db *DB) UpdateWatering(ctx context.Context, id string, lastWatered, nextWatering time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE gardens SET last_watered = ?, next_watering = ? WHERE id = ?`,
		toUnixNano(lastWatered), toUnixNano(nextWatering), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating watering for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("plant", id)
	}
	return nil
}

// AdvanceSchedule moves next_watering to next only if it still equals
// expect. A false return with nil error means the row changed underneath us
// (the user watered while the reminder was in flight) and the advance was
// correctly skipped.
func (db *DB) AdvanceSchedule(ctx context.Context, id string, expect, next time.Time) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE gardens SET next_watering = ? WHERE id = ? AND next_watering = ?`,
		toUnixNano(next), id, toUnixNano(expect),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: advancing schedule for %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish "lost the race" from "entry deleted".
	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gardens WHERE id = ?`, id,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("sqlite: checking garden entry %s: %w", id, err)
	}
	if count == 0 {
		return false, apperror.NotFound("plant", id)
	}
	return false, nil
}

// Delete removes a garden entry.
// Returns apperror.ErrNotFound if no entry exists with that ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM gardens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting garden entry %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("plant", id)
	}
	return nil
}
