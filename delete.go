package qb

import (
	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// Delete is a DELETE statement. It refuses to compile without a non-empty
// WHERE clause so a whole table is never wiped by accident.
type Delete struct {
	statement
	whereSlot
	table    ident
	hasTable bool
}

func NewDelete() *Delete {
	return &Delete{}
}

// From sets the table. It can only be set once.
func (q *Delete) From(table any) *Delete {
	if q.err != nil {
		return q
	}
	if q.hasTable {
		q.fail(structuref("delete table is already set"))
		return q
	}
	id, err := toIdent(table)
	if err != nil {
		q.fail(err)
		return q
	}
	q.table, q.hasTable = id, true
	q.touch()
	return q
}

func (q *Delete) Table(table any) *Delete { return q.From(table) }

func (q *Delete) Where(specs ...any) *Delete {
	q.WhereClause().Spec(specs...)
	return q
}

func (q *Delete) AndWhere(specs ...any) *Delete {
	return q.Where(specs...)
}

func (q *Delete) OrWhere(specs ...any) *Delete {
	q.WhereClause().Or().Spec(specs...)
	return q
}

func (q *Delete) WhereClause() *Where {
	return q.whereSlot.clause(q)
}

func (q *Delete) SetWhere(w *Where) *Delete {
	if err := q.whereSlot.set(q, w); err != nil {
		q.fail(err)
	}
	return q
}

// Attach puts a *Where into its slot. Any other node is an error.
func (q *Delete) Attach(c Element) *Delete {
	if w, ok := c.(*Where); ok {
		return q.SetWhere(w)
	}
	q.fail(structuref("cannot attach %T to a delete", c))
	return q
}

func (q *Delete) Err() error {
	if q.err != nil {
		return q.err
	}
	return q.whereErr()
}

func (q *Delete) compile(d driver.Driver, p *param.Collector) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	if !q.hasTable {
		return "", compilef("delete has no table")
	}
	where, err := q.whereSlot.compile(d, p)
	if err != nil {
		return "", err
	}
	if where == "" {
		return "", compilef("refusing to delete from %s without a WHERE condition", q.table.text)
	}
	return "DELETE FROM " + q.table.render(d) + " " + where, nil
}

func (q *Delete) clone() Element { return q.Clone() }

func (q *Delete) Clone() *Delete {
	n := &Delete{statement: q.copyStatement(), table: q.table, hasTable: q.hasTable}
	n.whereSlot = q.whereSlot.cloneFor(n)
	return n
}

func (q *Delete) Compile(d driver.Driver) (string, *param.Collector, error) {
	return compileStatement(q, &q.statement, d)
}

func (q *Delete) SQL(d driver.Driver) (string, error) {
	sql, _, err := q.Compile(d)
	return sql, err
}

func (q *Delete) ToSql(d driver.Driver) (string, []any, error) {
	return positional(q, &q.statement, d)
}
