package qb

import (
	"sort"
	"strings"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// Aliased is a column with an alias, see As.
type Aliased struct {
	expr  any
	alias string
}

// As names a column: As("COUNT(*)", "total") renders `COUNT(*) AS "total"`.
func As(expr any, alias string) Aliased {
	return Aliased{expr: expr, alias: alias}
}

type functionCall func(column string) *Expression

type aggregators struct {
	Min   functionCall
	Max   functionCall
	Count functionCall
	Avg   functionCall
	Sum   functionCall
}

// Aggregators build aggregate columns with a quoted argument, e.g. Aggregators.Max("age") is MAX("age").
var Aggregators = &aggregators{
	Min:   makeFunctionFormatter("MIN"),
	Max:   makeFunctionFormatter("MAX"),
	Count: makeFunctionFormatter("COUNT"),
	Avg:   makeFunctionFormatter("AVG"),
	Sum:   makeFunctionFormatter("SUM"),
}

func makeFunctionFormatter(function string) functionCall {
	return func(column string) *Expression {
		if column == "*" {
			return &Expression{template: function + "(*)", subs: map[string]any{}}
		}
		return &Expression{template: function + "({column})", subs: map[string]any{"column": Identifier(column)}}
	}
}

type column struct {
	id    ident
	node  Element
	alias string
}

type order struct {
	id  ident
	dir string
}

// Select is a SELECT statement.
type Select struct {
	statement
	whereSlot
	quantifier string
	columns    []column
	table      ident
	hasTable   bool
	from       *Select
	alias      string
	joins      []*Join
	groupBy    []ident
	having     *Having
	orderBy    []order
	limit      int
	offset     int
}

// NewSelect returns a SELECT of the given columns, * when none are given.
func NewSelect(columns ...any) *Select {
	s := &Select{limit: -1}
	s.Columns(columns...)
	return s
}

// Err returns the first error recorded on the statement or any of its clauses.
func (s *Select) Err() error {
	if s.err != nil {
		return s.err
	}
	if err := s.whereSlot.whereErr(); err != nil {
		return err
	}
	if s.having != nil {
		if err := s.having.Err(); err != nil {
			return err
		}
	}
	for _, j := range s.joins {
		if err := j.Err(); err != nil {
			return err
		}
	}
	if s.from != nil {
		return s.from.Err()
	}
	return nil
}

func (s *Select) Distinct() *Select {
	return s.Quantifier("DISTINCT")
}

// Quantifier sets DISTINCT or ALL. An empty string removes it.
func (s *Select) Quantifier(q string) *Select {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q != "" && q != "DISTINCT" && q != "ALL" {
		s.fail(invalidf("unsupported select quantifier %q", q))
		return s
	}
	s.quantifier = q
	s.touch()
	return s
}

// Columns appends columns. Each one is a name, Identifier, Alias, *Literal,
// *Expression, *Select, the result of As, or a KV of alias to column.
func (s *Select) Columns(columns ...any) *Select {
	for _, c := range columns {
		if kv, ok := c.(KV); ok {
			keys := make([]string, 0, len(kv))
			for k := range kv {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				s.Column(kv[k], k)
			}
			continue
		}
		if a, ok := c.(Aliased); ok {
			s.Column(a.expr, a.alias)
			continue
		}
		s.Column(c, "")
	}
	return s
}

// Column appends one column with an optional alias.
func (s *Select) Column(expr any, alias string) *Select {
	if s.err != nil {
		return s
	}
	col := column{}
	if alias = strings.TrimSpace(alias); alias != "" {
		a, err := NewAlias(alias)
		if err != nil {
			s.fail(err)
			return s
		}
		col.alias = string(a)
	}
	switch e := expr.(type) {
	case *Select:
		if e == nil {
			s.fail(invalidf("column cannot be a nil sub-select"))
			return s
		}
		if err := checkAttach(s, e); err != nil {
			s.fail(err)
			return s
		}
		col.node = adopt(Element(s), e)
	case *Expression:
		if e == nil {
			s.fail(invalidf("column cannot be a nil expression"))
			return s
		}
		if err := checkAttach(s, e); err != nil {
			s.fail(err)
			return s
		}
		col.node = adopt(Element(s), e)
	default:
		id, err := toIdent(expr)
		if err != nil {
			s.fail(err)
			return s
		}
		col.id = id
	}
	s.columns = append(s.columns, col)
	s.touch()
	return s
}

// From sets the table, or a sub-select which then needs an alias. The table
// can only be set once.
func (s *Select) From(table any, alias ...string) *Select {
	if s.err != nil {
		return s
	}
	if s.hasTable {
		s.fail(structuref("select table is already set"))
		return s
	}
	if len(alias) > 0 && strings.TrimSpace(alias[0]) != "" {
		a, err := NewAlias(alias[0])
		if err != nil {
			s.fail(err)
			return s
		}
		s.alias = string(a)
	}
	if sub, ok := table.(*Select); ok && sub != nil {
		if s.alias == "" {
			s.fail(invalidf("a sub-select in FROM needs an alias"))
			return s
		}
		if err := checkAttach(s, sub); err != nil {
			s.fail(err)
			return s
		}
		s.from = adopt(Element(s), sub)
	} else {
		id, err := toIdent(table)
		if err != nil {
			s.fail(err)
			return s
		}
		s.table = id
	}
	s.hasTable = true
	s.touch()
	return s
}

// AddJoin appends j.
func (s *Select) AddJoin(j *Join) *Select {
	if s.err != nil {
		return s
	}
	if j == nil {
		s.fail(invalidf("join cannot be nil"))
		return s
	}
	if err := checkAttach(s, j); err != nil {
		s.fail(err)
		return s
	}
	s.joins = append(s.joins, adopt(Element(s), j))
	s.touch()
	return s
}

// Join appends a join, see NewJoin for table and spec.
func (s *Select) Join(typ JoinType, table any, alias string, spec any) *Select {
	if s.err != nil {
		return s
	}
	j, err := NewJoin(typ, table, alias, spec)
	if err != nil {
		s.fail(err)
		return s
	}
	return s.AddJoin(j)
}

func (s *Select) InnerJoin(table any, alias string, spec any) *Select {
	return s.Join(JoinInner, table, alias, spec)
}

func (s *Select) LeftJoin(table any, alias string, spec any) *Select {
	return s.Join(JoinLeft, table, alias, spec)
}

func (s *Select) RightJoin(table any, alias string, spec any) *Select {
	return s.Join(JoinRight, table, alias, spec)
}

func (s *Select) CrossJoin(table any, alias string) *Select {
	return s.Join(JoinCross, table, alias, nil)
}

func (s *Select) StraightJoin(table any, alias string, spec any) *Select {
	return s.Join(JoinStraight, table, alias, spec)
}

func (s *Select) NaturalJoin(table any, alias string) *Select {
	return s.Join(JoinNatural, table, alias, nil)
}

func (s *Select) NaturalLeftJoin(table any, alias string) *Select {
	return s.Join(JoinNaturalLeft, table, alias, nil)
}

func (s *Select) NaturalRightJoin(table any, alias string) *Select {
	return s.Join(JoinNaturalRight, table, alias, nil)
}

// Joins returns the joins in the order they were added.
func (s *Select) Joins() []*Join {
	return append([]*Join(nil), s.joins...)
}

// Where adds specs to the WHERE clause, joined with AND.
func (s *Select) Where(specs ...any) *Select {
	s.WhereClause().Spec(specs...)
	return s
}

func (s *Select) AndWhere(specs ...any) *Select {
	return s.Where(specs...)
}

// OrWhere adds specs to the WHERE clause, the first one joined with OR.
func (s *Select) OrWhere(specs ...any) *Select {
	s.WhereClause().Or().Spec(specs...)
	return s
}

// WhereClause returns the WHERE clause, creating it on first use.
func (s *Select) WhereClause() *Where {
	return s.whereSlot.clause(s)
}

// SetWhere replaces the WHERE clause. A clause owned by another statement is copied.
func (s *Select) SetWhere(w *Where) *Select {
	if err := s.whereSlot.set(s, w); err != nil {
		s.fail(err)
	}
	return s
}

func (s *Select) Having(specs ...any) *Select {
	s.HavingClause().Spec(specs...)
	return s
}

func (s *Select) OrHaving(specs ...any) *Select {
	s.HavingClause().Or().Spec(specs...)
	return s
}

func (s *Select) HavingClause() *Having {
	if s.having == nil {
		s.having = adopt(Element(s), NewHaving())
		s.touch()
	}
	return s.having
}

func (s *Select) SetHaving(h *Having) *Select {
	if h == nil {
		s.having = nil
	} else {
		if err := checkAttach(s, h); err != nil {
			s.fail(err)
			return s
		}
		s.having = adopt(Element(s), h)
	}
	s.touch()
	return s
}

// Attach puts a *Where or *Having into its slot. Any other node is an error.
func (s *Select) Attach(c Element) *Select {
	switch c := c.(type) {
	case *Where:
		return s.SetWhere(c)
	case *Having:
		return s.SetHaving(c)
	}
	s.fail(structuref("cannot attach %T to a select", c))
	return s
}

func (s *Select) GroupBy(columns ...any) *Select {
	if s.err != nil {
		return s
	}
	for _, c := range columns {
		id, err := toIdent(c)
		if err != nil {
			s.fail(err)
			return s
		}
		s.groupBy = append(s.groupBy, id)
	}
	s.touch()
	return s
}

// OrderBy appends an ordering. column may carry the direction ("name DESC");
// dir defaults to ASC and is case-insensitive.
func (s *Select) OrderBy(column any, dir ...string) *Select {
	if s.err != nil {
		return s
	}
	d := "ASC"
	if name, ok := column.(string); ok {
		if fields := strings.Fields(name); len(fields) == 2 {
			column, d = fields[0], fields[1]
		}
	}
	if len(dir) > 0 && strings.TrimSpace(dir[0]) != "" {
		d = dir[0]
	}
	d = strings.ToUpper(strings.TrimSpace(d))
	if d != "ASC" && d != "DESC" {
		s.fail(invalidf("unsupported order direction %q", d))
		return s
	}
	id, err := toIdent(column)
	if err != nil {
		s.fail(err)
		return s
	}
	s.orderBy = append(s.orderBy, order{id: id, dir: d})
	s.touch()
	return s
}

// Limit sets the row limit. Negative values become 0.
func (s *Select) Limit(n int) *Select {
	if n < 0 {
		n = 0
	}
	s.limit = n
	s.touch()
	return s
}

// Offset sets the number of skipped rows. Negative values become 0, which is not rendered.
func (s *Select) Offset(n int) *Select {
	if n < 0 {
		n = 0
	}
	s.offset = n
	s.touch()
	return s
}

func (s *Select) Take(n int) *Select { return s.Limit(n) }

func (s *Select) Skip(n int) *Select { return s.Offset(n) }

// prefix is the quoted qualifier of unqualified columns: the alias, or the
// table name once joins are involved. The alias is quoted as one unit.
func (s *Select) prefix(d driver.Driver) string {
	if s.alias != "" {
		return d.QuoteAlias(s.alias)
	}
	if len(s.joins) > 0 && s.from == nil && s.table.kind == identName {
		return d.QuoteIdentifier(s.table.text)
	}
	return ""
}

func (s *Select) compileColumns(d driver.Driver, p *param.Collector) (string, error) {
	prefix := s.prefix(d)
	if len(s.columns) == 0 {
		if prefix != "" {
			return prefix + ".*", nil
		}
		return "*", nil
	}
	out := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		var sql string
		switch {
		case c.node != nil:
			compiled, err := c.node.compile(d, p)
			if err != nil {
				return "", err
			}
			if _, sub := c.node.(*Select); sub {
				compiled = "(" + compiled + ")"
			}
			sql = compiled
		case prefix != "" && !c.id.qualified():
			sql = prefix + "." + d.QuoteIdentifier(c.id.text)
		default:
			sql = c.id.render(d)
		}
		if c.alias != "" {
			sql += " AS " + d.QuoteAlias(c.alias)
		}
		out = append(out, sql)
	}
	return strings.Join(out, ", "), nil
}

func (s *Select) compile(d driver.Driver, p *param.Collector) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if !s.hasTable {
		return "", compilef("select has no table")
	}

	parts := []string{"SELECT"}
	if s.quantifier != "" {
		parts = append(parts, s.quantifier)
	}
	cols, err := s.compileColumns(d, p)
	if err != nil {
		return "", err
	}
	parts = append(parts, cols, "FROM")
	if s.from != nil {
		sub, err := s.from.compile(d, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+sub+")")
	} else {
		parts = append(parts, s.table.render(d))
	}
	if s.alias != "" {
		parts = append(parts, d.QuoteAlias(s.alias))
	}

	for _, j := range s.joins {
		sql, err := j.compile(d, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}

	where, err := s.whereSlot.compile(d, p)
	if err != nil {
		return "", err
	}
	parts = appendNonEmpty(parts, where)

	if len(s.groupBy) > 0 {
		cols := make([]string, len(s.groupBy))
		for i, g := range s.groupBy {
			cols[i] = g.render(d)
		}
		parts = append(parts, "GROUP BY "+strings.Join(cols, ", "))
	}

	if s.having != nil {
		having, err := s.having.compile(d, p)
		if err != nil {
			return "", err
		}
		parts = appendNonEmpty(parts, having)
	}

	if len(s.orderBy) > 0 {
		cols := make([]string, len(s.orderBy))
		for i, o := range s.orderBy {
			cols[i] = o.id.render(d) + " " + o.dir
		}
		parts = append(parts, "ORDER BY "+strings.Join(cols, ", "))
	}

	parts = appendNonEmpty(parts, d.Limit(s.limit, s.offset, p))
	return strings.Join(parts, " "), nil
}

func appendNonEmpty(parts []string, s string) []string {
	if s == "" {
		return parts
	}
	return append(parts, s)
}

func (s *Select) clone() Element { return s.Clone() }

// Clone returns a deep copy of s without a parent.
func (s *Select) Clone() *Select {
	n := &Select{
		statement:  s.copyStatement(),
		quantifier: s.quantifier,
		table:      s.table,
		hasTable:   s.hasTable,
		alias:      s.alias,
		groupBy:    append([]ident(nil), s.groupBy...),
		orderBy:    append([]order(nil), s.orderBy...),
		limit:      s.limit,
		offset:     s.offset,
	}
	n.whereSlot = s.whereSlot.cloneFor(n)
	for _, c := range s.columns {
		if c.node != nil {
			node := c.node.clone()
			node.base().parent = n
			c.node = node
		}
		n.columns = append(n.columns, c)
	}
	if s.from != nil {
		n.from = s.from.Clone()
		n.from.parent = n
	}
	for _, j := range s.joins {
		jc := j.clone().(*Join)
		jc.parent = n
		n.joins = append(n.joins, jc)
	}
	if s.having != nil {
		n.having = s.having.Clone()
		n.having.parent = n
	}
	return n
}

// Compile returns the SQL with named markers and their bindings. With a nil
// driver the driver the statement was created with is used, or ANSI.
// The result is cached until the statement or one of its clauses changes.
func (s *Select) Compile(d driver.Driver) (string, *param.Collector, error) {
	return compileStatement(s, &s.statement, d)
}

func (s *Select) SQL(d driver.Driver) (string, error) {
	sql, _, err := s.Compile(d)
	return sql, err
}

// ToSql returns the SQL with the placeholders of the driver and the matching arguments.
func (s *Select) ToSql(d driver.Driver) (string, []any, error) {
	return positional(s, &s.statement, d)
}
