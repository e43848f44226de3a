package qb

import (
	"database/sql"

	"github.com/golobby/qb/driver"
)

// Config selects the dialect and logging of a Builder. The dialect is taken
// from Driver, then DB, then Dialect. With none of them the ANSI baseline is used.
type Config struct {
	// Dialect is a name accepted by driver.ByName: ansi, mysql, postgres, sqlite3.
	Dialect string
	// DB is inspected with driver.ForDB.
	DB     *sql.DB
	Driver driver.Driver
	// LogLevel builds a zap logger when Logger is nil. Nil keeps the package logger.
	LogLevel *LogLevel
	Logger   Logger
}

// Builder creates statements bound to one driver and logger.
type Builder struct {
	driver driver.Driver
	logger Logger
}

func New(cfg Config) (*Builder, error) {
	b := &Builder{driver: cfg.Driver, logger: cfg.Logger}
	if b.driver == nil && cfg.DB != nil {
		d, err := driver.ForDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		b.driver = d
	}
	if b.driver == nil {
		d, err := driver.ByName(cfg.Dialect)
		if err != nil {
			return nil, err
		}
		b.driver = d
	}
	if b.logger == nil && cfg.LogLevel != nil {
		l, err := newZapLogger(*cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		b.logger = l
	}
	return b, nil
}

func (b *Builder) Driver() driver.Driver { return b.driver }

func (b *Builder) bind(s *statement) {
	s.drv = b.driver
	s.log = b.logger
}

func (b *Builder) Select(columns ...any) *Select {
	s := NewSelect(columns...)
	b.bind(&s.statement)
	return s
}

func (b *Builder) Delete(table any) *Delete {
	q := NewDelete().From(table)
	b.bind(&q.statement)
	return q
}

func (b *Builder) Update(table any) *Update {
	u := NewUpdate().Table(table)
	b.bind(&u.statement)
	return u
}

func (b *Builder) Insert(table any) *Insert {
	i := NewInsert().Into(table)
	b.bind(&i.statement)
	return i
}
