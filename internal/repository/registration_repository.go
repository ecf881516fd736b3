package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/event-registration/internal/model"
)

// RegistrationRepo persists registrations.  It owns the reserve
// transaction that couples a new registration to its event's occupancy.
type RegistrationRepo struct {
	db *sql.DB
}

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// RegistrationFilter narrows List.  Q matches name or email.
type RegistrationFilter struct {
	EventID uint64
	Status  string
	Q       string
	Page
}

const registrationColumns = "id, event_id, name, email, status, created_at, updated_at"

func scanRegistration(s rowScanner, g *model.Registration) error {
	return s.Scan(&g.ID, &g.EventID, &g.Name, &g.Email, &g.Status, &g.CreatedAt, &g.UpdatedAt)
}

// Reserve claims one seat of reg.EventID and inserts reg as pending, both
// inside a single transaction.  The seat claim is a conditional increment:
// it only applies while the event is published and not full, so concurrent
// callers never oversell and never block each other on a version.  A guard
// miss writes nothing and returns ErrStale.  On success reg carries the
// stored row and occupied is the event's occupancy including this seat.
func (r *RegistrationRepo) Reserve(ctx context.Context, reg *model.Registration) (occupied uint32, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reserve: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE events
		    SET occupied_seats = occupied_seats + 1
		  WHERE id = ? AND status = ? AND occupied_seats < total_seats`,
		reg.EventID, model.EventPublished)
	if err != nil {
		return 0, fmt.Errorf("claim seat: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return 0, err
	}
	// The row stays locked by the UPDATE until commit.
	if err := tx.QueryRowContext(ctx,
		"SELECT occupied_seats FROM events WHERE id = ?", reg.EventID).Scan(&occupied); err != nil {
		return 0, fmt.Errorf("read occupancy: %w", err)
	}

	ins, err := tx.ExecContext(ctx,
		"INSERT INTO registrations (event_id, name, email, status) VALUES (?, ?, ?, ?)",
		reg.EventID, reg.Name, reg.Email, model.RegistrationPending)
	if err != nil {
		return 0, fmt.Errorf("insert registration: %w", err)
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := scanRegistration(tx.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE id = ?", id), reg); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reserve: %w", err)
	}
	committed = true
	return occupied, nil
}

// GetByID returns ErrNotFound when no such registration exists.
func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (model.Registration, error) {
	var g model.Registration
	err := scanRegistration(r.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE id = ?", id), &g)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Registration{}, ErrNotFound
	}
	return g, err
}

// List returns registrations newest first plus the total match count.
// Each row carries the title of its event.
func (r *RegistrationRepo) List(ctx context.Context, f RegistrationFilter) ([]model.Registration, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.EventID != 0 {
		where = append(where, "r.event_id = ?")
		args = append(args, f.EventID)
	}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, f.Status)
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		cond, a := likeAny(q, "r.name", "r.email")
		where = append(where, cond)
		args = append(args, a...)
	}
	cond := whereClause(where)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations r WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := f.Page.Normalize().limitOffset()
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.event_id, r.name, r.email, r.status, r.created_at, r.updated_at, e.title
		   FROM registrations r JOIN events e ON e.id = r.event_id
		  WHERE `+cond+` ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`,
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Registration, 0, limit)
	for rows.Next() {
		var g model.Registration
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &g.Email, &g.Status, &g.CreatedAt, &g.UpdatedAt, &g.EventTitle); err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// TransitionStatus moves a registration from one status to another only if
// it is still in `from`.  ErrStale means another writer got there first (or
// the row is gone).
func (r *RegistrationRepo) TransitionStatus(ctx context.Context, id uint64, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE registrations SET status = ? WHERE id = ? AND status = ?", to, id, from)
	if err != nil {
		return fmt.Errorf("transition registration: %w", err)
	}
	return expectOneRow(res)
}
