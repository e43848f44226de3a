package driver

import (
	"fmt"
	"strings"

	"github.com/golobby/qb/param"
	"github.com/lib/pq"
)

// Ansi is the baseline dialect. It needs no connection and is what statements
// compile with when no driver is given.
type Ansi struct{ base }

func NewAnsi(opts ...Option) *Ansi {
	return &Ansi{newBase("ansi", `"`, `"`, opts)}
}

// Limit has no standard form, so Ansi renders the numbers inline between
// brackets where they are visible but never executable.
func (a *Ansi) Limit(limit, offset int, _ *param.Collector) string {
	var parts []string
	if limit >= 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (a *Ansi) Placeholder(n int) string { return question(n) }

type MySQL struct{ base }

func NewMySQL(opts ...Option) *MySQL {
	return &MySQL{newBase("mysql", "`", "`", opts)}
}

// mysqlMaxRows is the documented way of asking MySQL for an offset without a limit.
const mysqlMaxRows = "18446744073709551615"

func (m *MySQL) Limit(limit, offset int, p *param.Collector) string {
	return paging(limit, offset, p, mysqlMaxRows)
}

func (m *MySQL) Placeholder(n int) string { return question(n) }

type Postgres struct{ base }

// NewPostgres quotes identifiers and strings the way lib/pq does. A custom
// escaper given in opts replaces pq.QuoteLiteral.
func NewPostgres(opts ...Option) *Postgres {
	opts = append([]Option{WithEscaper(EscaperFunc(func(s string) (string, error) {
		return strings.TrimSpace(pq.QuoteLiteral(s)), nil
	}))}, opts...)
	p := &Postgres{newBase("postgres", `"`, `"`, opts)}
	p.segment = pq.QuoteIdentifier
	return p
}

func (pg *Postgres) Limit(limit, offset int, p *param.Collector) string {
	return paging(limit, offset, p, "")
}

func (pg *Postgres) Placeholder(n int) string { return dollar(n) }

type SQLite struct{ base }

func NewSQLite(opts ...Option) *SQLite {
	return &SQLite{newBase("sqlite3", `"`, `"`, opts)}
}

func (s *SQLite) Limit(limit, offset int, p *param.Collector) string {
	return paging(limit, offset, p, "-1")
}

func (s *SQLite) Placeholder(n int) string { return question(n) }

// paging renders LIMIT/OFFSET with bound values. unlimited is written as the
// limit when only an offset is set and the dialect requires a LIMIT before OFFSET.
func paging(limit, offset int, p *param.Collector, unlimited string) string {
	var parts []string
	if limit >= 0 {
		parts = append(parts, "LIMIT "+p.Create("limit", limit, param.TypeInt))
	}
	if offset > 0 {
		if limit < 0 && unlimited != "" {
			parts = append(parts, "LIMIT "+unlimited)
		}
		parts = append(parts, "OFFSET "+p.Create("offset", offset, param.TypeInt))
	}
	return strings.Join(parts, " ")
}
