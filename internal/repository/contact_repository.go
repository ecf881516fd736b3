package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/event-registration/internal/model"
)

// ContactRepo stores messages from the public contact form.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

type ContactFilter struct {
	Q string
	Page
}

func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO contact_messages (name, email, message) VALUES (?, ?, ?)",
		m.Name, m.Email, m.Message)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM contact_messages WHERE id = ?", m.ID).Scan(&m.CreatedAt)
}

// List returns messages newest first.
func (r *ContactRepo) List(ctx context.Context, f ContactFilter) ([]model.ContactMessage, int64, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Q); q != "" {
		cond, a := likeAny(q, "name", "email", "message")
		where = append(where, cond)
		args = append(args, a...)
	}
	cond := whereClause(where)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contact_messages WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := f.Page.Normalize().limitOffset()
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, email, message, created_at FROM contact_messages WHERE "+cond+
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.ContactMessage, 0, limit)
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// Delete returns ErrNotFound when nothing was removed.
func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM contact_messages WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
