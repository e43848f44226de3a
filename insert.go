package qb

import (
	"sort"
	"strings"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// Insert is an INSERT statement over value rows or a sub-select.
type Insert struct {
	statement
	table    ident
	hasTable bool
	columns  []ident
	rows     [][]operand
	sub      *Select
}

func NewInsert() *Insert {
	return &Insert{}
}

// Into sets the table. It can only be set once.
func (i *Insert) Into(table any) *Insert {
	if i.err != nil {
		return i
	}
	if i.hasTable {
		i.fail(structuref("insert table is already set"))
		return i
	}
	id, err := toIdent(table)
	if err != nil {
		i.fail(err)
		return i
	}
	i.table, i.hasTable = id, true
	i.touch()
	return i
}

func (i *Insert) Columns(columns ...any) *Insert {
	if i.err != nil {
		return i
	}
	for _, c := range columns {
		id, err := toIdent(c)
		if err != nil {
			i.fail(err)
			return i
		}
		i.columns = append(i.columns, id)
	}
	i.touch()
	return i
}

// Values appends one row. Its width must match the columns and the earlier rows.
func (i *Insert) Values(values ...any) *Insert {
	if i.err != nil {
		return i
	}
	if i.sub != nil {
		i.fail(structuref("insert already takes its rows from a select"))
		return i
	}
	if len(values) == 0 {
		i.fail(invalidf("insert row cannot be empty"))
		return i
	}
	want := len(i.columns)
	if want == 0 && len(i.rows) > 0 {
		want = len(i.rows[0])
	}
	if want > 0 && len(values) != want {
		i.fail(invalidf("insert row has %d values, expected %d", len(values), want))
		return i
	}
	row := make([]operand, 0, len(values))
	for _, v := range values {
		o, err := newOperand(i, v)
		if err != nil {
			i.fail(err)
			return i
		}
		row = append(row, o)
	}
	i.rows = append(i.rows, row)
	i.touch()
	return i
}

// Row appends a row given as column to value. The first row fixes the columns
// in key order when none were set.
func (i *Insert) Row(row KV) *Insert {
	if i.err != nil {
		return i
	}
	if len(i.columns) == 0 {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cols := make([]any, len(keys))
		for n, k := range keys {
			cols[n] = k
		}
		i.Columns(cols...)
	}
	values := make([]any, 0, len(i.columns))
	for _, c := range i.columns {
		v, ok := row[c.text]
		if !ok {
			i.fail(invalidf("row has no value for column %q", c.text))
			return i
		}
		values = append(values, v)
	}
	if len(row) != len(values) {
		i.fail(invalidf("row has %d values, expected %d", len(row), len(values)))
		return i
	}
	return i.Values(values...)
}

// Select makes the statement insert the rows of sub.
func (i *Insert) Select(sub *Select) *Insert {
	if i.err != nil {
		return i
	}
	if sub == nil {
		i.fail(invalidf("insert select cannot be nil"))
		return i
	}
	if len(i.rows) > 0 {
		i.fail(structuref("insert already has value rows"))
		return i
	}
	if err := checkAttach(i, sub); err != nil {
		i.fail(err)
		return i
	}
	i.sub = adopt(Element(i), sub)
	i.touch()
	return i
}

func (i *Insert) Err() error {
	if i.err != nil {
		return i.err
	}
	if i.sub != nil {
		return i.sub.Err()
	}
	return nil
}

func (i *Insert) compile(d driver.Driver, p *param.Collector) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	if !i.hasTable {
		return "", compilef("insert has no table")
	}
	if len(i.rows) == 0 && i.sub == nil {
		return "", compilef("insert into %s has no rows", i.table.text)
	}

	parts := []string{"INSERT INTO", i.table.render(d)}
	if len(i.columns) > 0 {
		cols := make([]string, len(i.columns))
		for n, c := range i.columns {
			cols[n] = c.render(d)
		}
		parts = append(parts, "("+strings.Join(cols, ", ")+")")
	}
	if i.sub != nil {
		sql, err := i.sub.compile(d, p)
		if err != nil {
			return "", err
		}
		return strings.Join(append(parts, sql), " "), nil
	}

	rows := make([]string, len(i.rows))
	for n, row := range i.rows {
		values := make([]string, len(row))
		for m, v := range row {
			sql, err := v.compile("val", d, p)
			if err != nil {
				return "", err
			}
			values[m] = sql
		}
		rows[n] = "(" + strings.Join(values, ", ") + ")"
	}
	parts = append(parts, "VALUES", strings.Join(rows, ", "))
	return strings.Join(parts, " "), nil
}

func (i *Insert) clone() Element { return i.Clone() }

func (i *Insert) Clone() *Insert {
	n := &Insert{
		statement: i.copyStatement(),
		table:     i.table,
		hasTable:  i.hasTable,
		columns:   append([]ident(nil), i.columns...),
	}
	for _, row := range i.rows {
		r := make([]operand, len(row))
		for m, v := range row {
			r[m] = v.clone(n)
		}
		n.rows = append(n.rows, r)
	}
	if i.sub != nil {
		n.sub = i.sub.Clone()
		n.sub.parent = n
	}
	return n
}

func (i *Insert) Compile(d driver.Driver) (string, *param.Collector, error) {
	return compileStatement(i, &i.statement, d)
}

func (i *Insert) SQL(d driver.Driver) (string, error) {
	sql, _, err := i.Compile(d)
	return sql, err
}

func (i *Insert) ToSql(d driver.Driver) (string, []any, error) {
	return positional(i, &i.statement, d)
}
