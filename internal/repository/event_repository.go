package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/event-registration/internal/model"
)

// EventRepo manages persistence for events.  Multi-field admin edits use
// the version column as an optimistic concurrency token; occupancy and
// capacity changes are guarded by the seat counts themselves.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB.
func (r *EventRepo) DB() *sql.DB { return r.db }

// EventFilter narrows List.  Q matches title, description or location
// case-insensitively.
type EventFilter struct {
	Q      string
	Status string
	Page
}

const eventColumns = `id, title, description, location, start_time, total_seats,
	occupied_seats, status, image_ref, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner, e *model.Event) error {
	return s.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartTime,
		&e.TotalSeats,
		&e.OccupiedSeats,
		&e.Status,
		&e.ImageRef,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

// Create inserts e and reloads it so DB defaults (timestamps, version) are
// populated.  OccupiedSeats always starts at zero.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	if e.Status == "" {
		e.Status = model.EventDraft
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, description, location, start_time, total_seats, occupied_seats, status, image_ref)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		e.Title, e.Description, e.Location, e.StartTime.UTC(), e.TotalSeats, e.Status, e.ImageRef)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = got
	return nil
}

// GetByID returns ErrNotFound when no such event exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id), &e)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// List returns one page of events ordered by start time plus the total
// number of matching rows.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		cond, a := likeAny(q, "title", "description", "location")
		where = append(where, cond)
		args = append(args, a...)
	}
	cond := whereClause(where)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := f.Page.Normalize().limitOffset()
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE "+cond+" ORDER BY start_time ASC, id ASC LIMIT ? OFFSET ?",
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Event, 0, limit)
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes the editable columns of e when the stored version still
// equals expectedVersion and the stored occupancy fits the new total.
// occupied_seats is never written here.  On success e.Version is bumped.
// A guard miss yields ErrStale; the caller re-reads to learn which guard
// failed.
func (r *EventRepo) Update(ctx context.Context, e *model.Event, expectedVersion uint32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events
		    SET title = ?, description = ?, location = ?, start_time = ?, image_ref = ?,
		        total_seats = ?, status = ?, version = version + 1
		  WHERE id = ? AND version = ? AND occupied_seats <= ?`,
		e.Title, e.Description, e.Location, e.StartTime.UTC(), e.ImageRef,
		e.TotalSeats, e.Status, e.ID, expectedVersion, e.TotalSeats)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	e.Version = expectedVersion + 1
	return nil
}

// SetTotalSeats changes only the capacity.  The occupancy guard is the
// whole condition, so registrations landing meanwhile never make it stale
// unless they push occupancy past total.  The version is still bumped so a
// concurrent Update does not overwrite the new capacity.
func (r *EventRepo) SetTotalSeats(ctx context.Context, id uint64, total uint32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET total_seats = ?, version = version + 1
		  WHERE id = ? AND occupied_seats <= ?`,
		total, id, total)
	if err != nil {
		return fmt.Errorf("set total seats: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes an event that has no registrations.  It returns
// ErrNotFound for a missing event and ErrConflict when registrations
// still reference it.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM events WHERE id = ? FOR UPDATE", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations WHERE event_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStale
	}
	return nil
}
