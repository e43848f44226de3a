package qb

import (
	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// statement is embedded by Select, Delete, Update and Insert.
type statement struct {
	element
	drv driver.Driver
	log Logger
	err error
}

func (s *statement) fail(err error) {
	if s.err == nil {
		s.err = err
		s.touch()
	}
}

func (s *statement) logger() Logger {
	if s.log != nil {
		return s.log
	}
	return defaultLogger
}

// resolve picks the driver for a compile: the argument, then the bound one, then ANSI.
func (s *statement) resolve(d driver.Driver) driver.Driver {
	if d != nil {
		return d
	}
	if s.drv != nil {
		return s.drv
	}
	return ansi
}

func (s *statement) copyStatement() statement {
	return statement{element: s.detached(), drv: s.drv, log: s.log, err: s.err}
}

func compileStatement(e Element, s *statement, d driver.Driver) (string, *param.Collector, error) {
	return compileTop(e, s.resolve(d), s.logger())
}

func positional(e Element, s *statement, d driver.Driver) (string, []any, error) {
	d = s.resolve(d)
	sql, p, err := compileTop(e, d, s.logger())
	if err != nil {
		return "", nil, err
	}
	q, args := p.Positional(sql, d.Placeholder)
	return q, args, nil
}

// whereSlot is the lazily created WHERE clause shared by Select, Delete and Update.
type whereSlot struct {
	where *Where
}

func (w *whereSlot) clause(owner Element) *Where {
	if w.where == nil {
		w.where = adopt(owner, NewWhere())
		owner.base().touch()
	}
	return w.where
}

func (w *whereSlot) set(owner Element, where *Where) error {
	if where == nil {
		w.where = nil
	} else {
		if err := checkAttach(owner, where); err != nil {
			return err
		}
		w.where = adopt(owner, where)
	}
	owner.base().touch()
	return nil
}

func (w *whereSlot) whereErr() error {
	if w.where == nil {
		return nil
	}
	return w.where.Err()
}

func (w *whereSlot) compile(d driver.Driver, p *param.Collector) (string, error) {
	if w.where == nil {
		return "", nil
	}
	return w.where.compile(d, p)
}

func (w *whereSlot) cloneFor(owner Element) whereSlot {
	if w.where == nil {
		return whereSlot{}
	}
	n := w.where.Clone()
	n.parent = owner
	return whereSlot{where: n}
}
