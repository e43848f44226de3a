package qb

import (
	"sort"
	"strings"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

type assignment struct {
	column ident
	value  operand
}

// Update is an UPDATE statement. Like Delete it needs a non-empty WHERE clause.
type Update struct {
	statement
	whereSlot
	table    ident
	hasTable bool
	sets     []assignment
}

func NewUpdate() *Update {
	return &Update{}
}

// Table sets the table. It can only be set once.
func (u *Update) Table(table any) *Update {
	if u.err != nil {
		return u
	}
	if u.hasTable {
		u.fail(structuref("update table is already set"))
		return u
	}
	id, err := toIdent(table)
	if err != nil {
		u.fail(err)
		return u
	}
	u.table, u.hasTable = id, true
	u.touch()
	return u
}

// Set assigns value to column. Setting the same column again replaces the value.
func (u *Update) Set(column any, value any) *Update {
	if u.err != nil {
		return u
	}
	id, err := toIdent(column)
	if err != nil {
		u.fail(err)
		return u
	}
	v, err := newOperand(u, value)
	if err != nil {
		u.fail(err)
		return u
	}
	a := assignment{column: id, value: v}
	for i := range u.sets {
		if u.sets[i].column == id {
			u.sets[i] = a
			u.touch()
			return u
		}
	}
	u.sets = append(u.sets, a)
	u.touch()
	return u
}

// SetValues assigns every entry of values, in key order.
func (u *Update) SetValues(values KV) *Update {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		u.Set(k, values[k])
	}
	return u
}

func (u *Update) Where(specs ...any) *Update {
	u.WhereClause().Spec(specs...)
	return u
}

func (u *Update) AndWhere(specs ...any) *Update {
	return u.Where(specs...)
}

func (u *Update) OrWhere(specs ...any) *Update {
	u.WhereClause().Or().Spec(specs...)
	return u
}

func (u *Update) WhereClause() *Where {
	return u.whereSlot.clause(u)
}

func (u *Update) SetWhere(w *Where) *Update {
	if err := u.whereSlot.set(u, w); err != nil {
		u.fail(err)
	}
	return u
}

// Attach puts a *Where into its slot. Any other node is an error.
func (u *Update) Attach(c Element) *Update {
	if w, ok := c.(*Where); ok {
		return u.SetWhere(w)
	}
	u.fail(structuref("cannot attach %T to an update", c))
	return u
}

func (u *Update) Err() error {
	if u.err != nil {
		return u.err
	}
	return u.whereErr()
}

func (u *Update) compile(d driver.Driver, p *param.Collector) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if !u.hasTable {
		return "", compilef("update has no table")
	}
	if len(u.sets) == 0 {
		return "", compilef("update of %s has nothing to SET", u.table.text)
	}
	sets := make([]string, len(u.sets))
	for i, a := range u.sets {
		v, err := a.value.compile("set", d, p)
		if err != nil {
			return "", err
		}
		sets[i] = a.column.render(d) + " = " + v
	}
	where, err := u.whereSlot.compile(d, p)
	if err != nil {
		return "", err
	}
	if where == "" {
		return "", compilef("refusing to update %s without a WHERE condition", u.table.text)
	}
	return "UPDATE " + u.table.render(d) + " SET " + strings.Join(sets, ", ") + " " + where, nil
}

func (u *Update) clone() Element { return u.Clone() }

func (u *Update) Clone() *Update {
	n := &Update{statement: u.copyStatement(), table: u.table, hasTable: u.hasTable}
	n.whereSlot = u.whereSlot.cloneFor(n)
	for _, a := range u.sets {
		n.sets = append(n.sets, assignment{column: a.column, value: a.value.clone(n)})
	}
	return n
}

func (u *Update) Compile(d driver.Driver) (string, *param.Collector, error) {
	return compileStatement(u, &u.statement, d)
}

func (u *Update) SQL(d driver.Driver) (string, error) {
	sql, _, err := u.Compile(d)
	return sql, err
}

func (u *Update) ToSql(d driver.Driver) (string, []any, error) {
	return positional(u, &u.statement, d)
}
