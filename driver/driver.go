// Package driver turns identifiers, aliases and values into dialect specific SQL text.
package driver

import (
	"database/sql"
	sqldriver "database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golobby/qb/param"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var ErrUnknownDialect = errors.New("qb/driver: unknown dialect")

// Driver is the quoting and formatting strategy of one SQL dialect.
type Driver interface {
	Name() string
	QuoteIdentifier(name string) string
	QuoteAlias(alias string) string
	QuoteValue(value any) string
	// Limit renders the paging fragment. A negative limit means no limit and
	// an offset that is not positive means no offset.
	Limit(limit, offset int, p *param.Collector) string
	// Placeholder returns the positional placeholder for the n-th argument, starting at 1.
	Placeholder(n int) string
}

// Escaper quotes a string value using knowledge of a live connection.
type Escaper interface {
	Quote(s string) (string, error)
}

type EscaperFunc func(s string) (string, error)

func (f EscaperFunc) Quote(s string) (string, error) { return f(s) }

type Option func(*base)

// WithEscaper makes the driver try e before falling back to manual escaping.
func WithEscaper(e Escaper) Option {
	return func(b *base) { b.escaper = e }
}

type base struct {
	name    string
	ql, qr  string
	qv      string
	escaper Escaper
	segment func(string) string
}

func newBase(name, ql, qr string, opts []Option) base {
	b := base{name: name, ql: ql, qr: qr, qv: "'"}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string { return b.name }

func (b *base) quoted(s string) bool {
	return len(s) >= len(b.ql)+len(b.qr) && strings.HasPrefix(s, b.ql) && strings.HasSuffix(s, b.qr)
}

func (b *base) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "*" || b.quoted(name) {
		return name
	}
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if part == "*" && i == len(parts)-1 {
			continue
		}
		if b.quoted(part) {
			continue
		}
		if b.segment != nil {
			parts[i] = b.segment(part)
			continue
		}
		parts[i] = b.ql + strings.ReplaceAll(part, b.qr, b.qr+b.qr) + b.qr
	}
	return strings.Join(parts, ".")
}

func (b *base) QuoteAlias(alias string) string {
	alias = strings.TrimLeft(strings.TrimRight(strings.TrimSpace(alias), b.qr), b.ql)
	return b.ql + strings.ReplaceAll(alias, b.qr, b.qr+b.qr) + b.qr
}

func (b *base) QuoteValue(value any) string {
	if valuer, ok := value.(sqldriver.Valuer); ok {
		v, err := valuer.Value()
		if err == nil {
			return b.QuoteValue(v)
		}
		value = fmt.Sprint(value)
	}

	var s string
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		s = v.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	if b.escaper != nil {
		if out, err := b.escaper.Quote(s); err == nil {
			return out
		}
	}
	return b.qv + Escape(s) + b.qv
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	`'`, `\'`,
	`"`, `\"`,
	"\x1a", `\Z`,
)

// Escape backslash-escapes the characters that may break out of a quoted value.
func Escape(s string) string {
	return escaper.Replace(s)
}

func dollar(n int) string { return "$" + strconv.Itoa(n) }

func question(int) string { return "?" }

// ByName returns the dialect registered under name. An empty name is the ANSI baseline.
func ByName(name string, opts ...Option) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ansi":
		return NewAnsi(opts...), nil
	case "mysql", "mariadb":
		return NewMySQL(opts...), nil
	case "postgres", "postgresql", "pgx":
		return NewPostgres(opts...), nil
	case "sqlite", "sqlite3":
		return NewSQLite(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// ForDB picks a dialect from the database/sql driver behind db.
func ForDB(db *sql.DB, opts ...Option) (Driver, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: nil database", ErrUnknownDialect)
	}
	switch db.Driver().(type) {
	case *mysql.MySQLDriver:
		return NewMySQL(opts...), nil
	case *pq.Driver:
		return NewPostgres(opts...), nil
	case *sqlite3.SQLiteDriver:
		return NewSQLite(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownDialect, db.Driver())
	}
}
