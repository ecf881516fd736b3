package repository

import "strings"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (Page-1)*PageSize far from integer overflow.
	MaxPage = 1_000_000
)

// Page is a 1-based pagination window.
type Page struct {
	Page     int
	PageSize int
}

// Normalize clamps the window to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Page) limitOffset() (int, int) {
	return p.PageSize, (p.Page - 1) * p.PageSize
}

// likeAny builds "(LOWER(a) LIKE ? OR LOWER(b) LIKE ?)" for a substring
// search over the given columns.
func likeAny(q string, cols ...string) (string, []any) {
	pat := "%" + escapeLike(strings.ToLower(q)) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = pat
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func whereClause(where []string) string {
	if len(where) == 0 {
		return "1=1"
	}
	return strings.Join(where, " AND ")
}
