package qb

import (
	"strings"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

type JoinType string

const (
	JoinAuto         JoinType = ""
	JoinInner        JoinType = "INNER"
	JoinCross        JoinType = "CROSS"
	JoinLeft         JoinType = "LEFT"
	JoinRight        JoinType = "RIGHT"
	JoinStraight     JoinType = "STRAIGHT_JOIN"
	JoinNatural      JoinType = "NATURAL"
	JoinNaturalLeft  JoinType = "NATURAL LEFT"
	JoinNaturalRight JoinType = "NATURAL RIGHT"
)

func parseJoinType(t JoinType) (JoinType, error) {
	n := JoinType(strings.ToUpper(strings.Join(strings.Fields(string(t)), " ")))
	switch n {
	case JoinAuto, JoinInner, JoinCross, JoinLeft, JoinRight, JoinStraight, JoinNatural, JoinNaturalLeft, JoinNaturalRight:
		return n, nil
	case "STRAIGHT":
		return JoinStraight, nil
	}
	return "", invalidf("unsupported join type %q", t)
}

// Using is a USING(col, ...) join specification.
type Using []string

// Join is a joined table with an optional specification: an *On condition,
// a *Literal rendered verbatim or a Using column list.
type Join struct {
	element
	typ     JoinType
	table   ident
	sub     *Select
	alias   string
	on      *On
	literal *Literal
	using   Using
}

// NewJoin builds a join. table is a name or a *Select, which then needs an
// alias. spec may be nil, *On, *Literal, Using, Identifier (a single USING
// column) or anything ParseSpec accepts, which becomes the ON condition.
func NewJoin(typ JoinType, table any, alias string, spec any) (*Join, error) {
	t, err := parseJoinType(typ)
	if err != nil {
		return nil, err
	}
	j := &Join{typ: t}
	if alias = strings.TrimSpace(alias); alias != "" {
		a, err := NewAlias(alias)
		if err != nil {
			return nil, err
		}
		j.alias = string(a)
	}
	if sub, ok := table.(*Select); ok && sub != nil {
		if j.alias == "" {
			return nil, invalidf("a joined sub-select needs an alias")
		}
		j.sub = adopt(Element(j), sub)
	} else if j.table, err = toIdent(table); err != nil {
		return nil, err
	}

	switch s := spec.(type) {
	case nil:
	case *On:
		j.on = adopt(Element(j), s)
	case *Literal:
		j.literal = s
	case Using:
		if err := validUsing(s); err != nil {
			return nil, err
		}
		j.using = append(Using(nil), s...)
	case Identifier:
		if err := validUsing(Using{string(s)}); err != nil {
			return nil, err
		}
		j.using = Using{string(s)}
	case *Set:
		if err := s.Err(); err != nil {
			return nil, err
		}
		on := NewOn()
		on.Set = adopt(Element(on), s)
		j.on = adopt(Element(j), on)
	default:
		on := NewOn()
		on.SpecStrict(spec)
		if err := on.Err(); err != nil {
			return nil, err
		}
		j.on = adopt(Element(j), on)
	}
	return j, nil
}

func validUsing(cols Using) error {
	if len(cols) == 0 {
		return invalidf("USING needs at least one column")
	}
	for _, c := range cols {
		if strings.TrimSpace(c) == "" {
			return invalidf("USING column cannot be empty")
		}
	}
	return nil
}

// On returns the ON clause of the join, creating it on first use. It replaces
// a literal or USING specification.
func (j *Join) On() *On {
	if j.on == nil {
		j.on = adopt(Element(j), NewOn())
		j.literal = nil
		j.using = nil
		j.touch()
	}
	return j.on
}

func (j *Join) Type() JoinType { return j.typ }

func (j *Join) Err() error {
	if j.on != nil {
		return j.on.Err()
	}
	return nil
}

func (j *Join) compile(d driver.Driver, p *param.Collector) (string, error) {
	parts := make([]string, 0, 5)
	switch j.typ {
	case JoinStraight:
		parts = append(parts, string(JoinStraight))
	case JoinAuto:
		parts = append(parts, "JOIN")
	default:
		parts = append(parts, string(j.typ)+" JOIN")
	}
	if j.sub != nil {
		sql, err := j.sub.compile(d, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+sql+")")
	} else {
		parts = append(parts, j.table.render(d))
	}
	if j.alias != "" {
		parts = append(parts, d.QuoteAlias(j.alias))
	}
	switch {
	case j.on != nil:
		on, err := j.on.compile(d, p)
		if err != nil {
			return "", err
		}
		if on != "" {
			parts = append(parts, on)
		}
	case j.literal != nil:
		parts = append(parts, j.literal.sql)
	case len(j.using) > 0:
		cols := make([]string, len(j.using))
		for i, c := range j.using {
			cols[i] = d.QuoteIdentifier(c)
		}
		parts = append(parts, "USING("+strings.Join(cols, ", ")+")")
	}
	return strings.Join(parts, " "), nil
}

func (j *Join) clone() Element {
	n := &Join{element: j.detached(), typ: j.typ, table: j.table, alias: j.alias, literal: j.literal}
	n.using = append(Using(nil), j.using...)
	if j.sub != nil {
		n.sub = j.sub.clone().(*Select)
		n.sub.parent = n
	}
	if j.on != nil {
		n.on = j.on.Clone()
		n.on.parent = n
	}
	return n
}
