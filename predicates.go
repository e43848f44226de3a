package qb

import (
	"regexp"
	"strings"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// Predicate is one boolean condition. *Set is a Predicate too.
type Predicate interface {
	Element
	predicate()
}

func not(negated bool) string {
	if negated {
		return "NOT "
	}
	return ""
}

// Comparison renders `id op value`.
type Comparison struct {
	element
	id    ident
	op    string
	value operand
}

// NewComparison accepts the symbolic operators and their word aliases (eq, neq, lte, greaterThan...).
func NewComparison(id any, op string, value any) (*Comparison, error) {
	i, err := toIdent(id)
	if err != nil {
		return nil, err
	}
	op, err = normalizeComparison(op)
	if err != nil {
		return nil, err
	}
	c := &Comparison{id: i, op: op}
	if c.value, err = newOperand(c, value); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Comparison) predicate() {}

func (c *Comparison) compile(d driver.Driver, p *param.Collector) (string, error) {
	v, err := c.value.compile(comparisons[c.op], d, p)
	if err != nil {
		return "", err
	}
	return c.id.render(d) + " " + c.op + " " + v, nil
}

func (c *Comparison) clone() Element {
	n := &Comparison{element: c.detached(), id: c.id, op: c.op}
	n.value = c.value.clone(n)
	return n
}

// Quantified compares id against every row of a sub-select: `id > ALL(SELECT ...)`.
type Quantified struct {
	element
	id         ident
	op         string
	quantifier string
	sub        *Select
}

const (
	All  = "ALL"
	Any  = "ANY"
	Some = "SOME"
)

func NewQuantified(id any, op, quantifier string, sub *Select) (*Quantified, error) {
	i, err := toIdent(id)
	if err != nil {
		return nil, err
	}
	op, err = normalizeComparison(op)
	if err != nil {
		return nil, err
	}
	quantifier = strings.ToUpper(strings.TrimSpace(quantifier))
	if quantifier != All && quantifier != Any && quantifier != Some {
		return nil, invalidf("unsupported quantifier %q", quantifier)
	}
	if sub == nil {
		return nil, invalidf("%s requires a sub-select", quantifier)
	}
	q := &Quantified{id: i, op: op, quantifier: quantifier}
	q.sub = adopt(Element(q), sub)
	return q, nil
}

func (q *Quantified) predicate() {}

func (q *Quantified) compile(d driver.Driver, p *param.Collector) (string, error) {
	sql, err := q.sub.compile(d, p)
	if err != nil {
		return "", err
	}
	return q.id.render(d) + " " + q.op + " " + q.quantifier + "(" + sql + ")", nil
}

func (q *Quantified) clone() Element {
	n := &Quantified{element: q.detached(), id: q.id, op: q.op, quantifier: q.quantifier}
	n.sub = q.sub.clone().(*Select)
	n.sub.parent = n
	return n
}

// Between renders `id [NOT] BETWEEN :minN AND :maxM`.
type Between struct {
	element
	id       ident
	negated  bool
	min, max operand
}

func NewBetween(id, min, max any) (*Between, error) {
	return newBetween(id, min, max, false)
}

func NewNotBetween(id, min, max any) (*Between, error) {
	return newBetween(id, min, max, true)
}

func newBetween(id, min, max any, negated bool) (*Between, error) {
	i, err := toIdent(id)
	if err != nil {
		return nil, err
	}
	b := &Between{id: i, negated: negated}
	if b.min, err = newOperand(b, min); err != nil {
		return nil, err
	}
	if b.max, err = newOperand(b, max); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Between) predicate() {}

func (b *Between) compile(d driver.Driver, p *param.Collector) (string, error) {
	lo, err := b.min.compile("min", d, p)
	if err != nil {
		return "", err
	}
	hi, err := b.max.compile("max", d, p)
	if err != nil {
		return "", err
	}
	return b.id.render(d) + " " + not(b.negated) + "BETWEEN " + lo + " AND " + hi, nil
}

func (b *Between) clone() Element {
	n := &Between{element: b.detached(), id: b.id, negated: b.negated}
	n.min = b.min.clone(n)
	n.max = b.max.clone(n)
	return n
}

// In renders `id [NOT] IN (...)` over a value list or a sub-select.
type In struct {
	element
	id      ident
	negated bool
	values  []operand
	sub     *Select
}

// NewIn accepts the values one by one, as a single slice, or a single *Select.
func NewIn(id any, values ...any) (*In, error) {
	return newIn(id, values, false)
}

func NewNotIn(id any, values ...any) (*In, error) {
	return newIn(id, values, true)
}

func newIn(id any, values []any, negated bool) (*In, error) {
	i, err := toIdent(id)
	if err != nil {
		return nil, err
	}
	in := &In{id: i, negated: negated}
	if len(values) == 1 {
		if sub, ok := values[0].(*Select); ok && sub != nil {
			in.sub = adopt(Element(in), sub)
			return in, nil
		}
		if list, ok := asList(values[0]); ok {
			values = list
		}
	}
	if len(values) == 0 {
		return nil, invalidf("IN list cannot be empty")
	}
	for _, v := range values {
		o, err := newOperand(in, v)
		if err != nil {
			return nil, err
		}
		in.values = append(in.values, o)
	}
	return in, nil
}

func (in *In) predicate() {}

func (in *In) compile(d driver.Driver, p *param.Collector) (string, error) {
	var list string
	if in.sub != nil {
		sql, err := in.sub.compile(d, p)
		if err != nil {
			return "", err
		}
		list = sql
	} else {
		markers := make([]string, 0, len(in.values))
		for _, v := range in.values {
			m, err := v.compile("in", d, p)
			if err != nil {
				return "", err
			}
			markers = append(markers, m)
		}
		list = strings.Join(markers, ", ")
	}
	return in.id.render(d) + " " + not(in.negated) + "IN (" + list + ")", nil
}

func (in *In) clone() Element {
	n := &In{element: in.detached(), id: in.id, negated: in.negated}
	for _, v := range in.values {
		n.values = append(n.values, v.clone(n))
	}
	if in.sub != nil {
		n.sub = in.sub.clone().(*Select)
		n.sub.parent = n
	}
	return n
}

// Like renders `id [NOT] LIKE :likeN`.
type Like struct {
	element
	id      ident
	negated bool
	pattern operand
}

func NewLike(id, pattern any) (*Like, error) {
	return newLike(id, pattern, false)
}

func NewNotLike(id, pattern any) (*Like, error) {
	return newLike(id, pattern, true)
}

func newLike(id, pattern any, negated bool) (*Like, error) {
	i, err := toIdent(id)
	if err != nil {
		return nil, err
	}
	l := &Like{id: i, negated: negated}
	if l.pattern, err = newOperand(l, pattern); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Like) predicate() {}

func (l *Like) compile(d driver.Driver, p *param.Collector) (string, error) {
	m, err := l.pattern.compile("like", d, p)
	if err != nil {
		return "", err
	}
	return l.id.render(d) + " " + not(l.negated) + "LIKE " + m, nil
}

func (l *Like) clone() Element {
	n := &Like{element: l.detached(), id: l.id, negated: l.negated}
	n.pattern = l.pattern.clone(n)
	return n
}

// Is renders `id IS [NOT] NULL|TRUE|FALSE|UNKNOWN`.
type Is struct {
	element
	id      ident
	negated bool
	value   string
}

func NewIs(id, value any) (*Is, error) {
	return newIs(id, value, false)
}

func NewIsNot(id, value any) (*Is, error) {
	return newIs(id, value, true)
}

func newIs(id, value any, negated bool) (*Is, error) {
	i, err := toIdent(id)
	if err != nil {
		return nil, err
	}
	var kw string
	switch v := value.(type) {
	case nil:
		kw = "NULL"
	case bool:
		kw = "FALSE"
		if v {
			kw = "TRUE"
		}
	case string:
		switch kw = strings.ToUpper(strings.TrimSpace(v)); kw {
		case "NULL", "TRUE", "FALSE", "UNKNOWN":
		default:
			return nil, invalidf("IS expects null, true, false or unknown, got %q", v)
		}
	default:
		return nil, invalidf("IS expects null, true, false or unknown, got %T", value)
	}
	return &Is{id: i, negated: negated, value: kw}, nil
}

func (is *Is) predicate() {}

func (is *Is) compile(d driver.Driver, _ *param.Collector) (string, error) {
	return is.id.render(d) + " IS " + not(is.negated) + is.value, nil
}

func (is *Is) clone() Element {
	return &Is{element: is.detached(), id: is.id, negated: is.negated, value: is.value}
}

// Exists renders `[NOT ]EXISTS (SELECT ...)`.
type Exists struct {
	element
	negated bool
	sub     *Select
}

func NewExists(sub *Select) (*Exists, error) {
	return newExists(sub, false)
}

func NewNotExists(sub *Select) (*Exists, error) {
	return newExists(sub, true)
}

func newExists(sub *Select, negated bool) (*Exists, error) {
	if sub == nil {
		return nil, invalidf("EXISTS requires a sub-select")
	}
	e := &Exists{negated: negated}
	e.sub = adopt(Element(e), sub)
	return e, nil
}

func (e *Exists) predicate() {}

func (e *Exists) compile(d driver.Driver, p *param.Collector) (string, error) {
	sql, err := e.sub.compile(d, p)
	if err != nil {
		return "", err
	}
	return not(e.negated) + "EXISTS (" + sql + ")", nil
}

func (e *Exists) clone() Element {
	n := &Exists{element: e.detached(), negated: e.negated}
	n.sub = e.sub.clone().(*Select)
	n.sub.parent = n
	return n
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expression is a SQL template whose {name} placeholders are replaced at
// compile time. Identifier and Alias substitutions are quoted and spliced in,
// a *Literal is spliced verbatim, a *Select becomes a parenthesized sub-query
// and anything else is bound under an "expr" marker.
type Expression struct {
	element
	template string
	subs     map[string]any
}

func NewExpression(template string, subs KV) (*Expression, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, invalidf("expression template cannot be empty")
	}
	e := &Expression{template: template, subs: map[string]any{}}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if _, seen := e.subs[name]; seen {
			continue
		}
		v, ok := subs[name]
		if !ok {
			return nil, invalidf("no substitution for {%s}", name)
		}
		switch x := v.(type) {
		case Identifier, Alias:
			if _, err := toIdent(x); err != nil {
				return nil, err
			}
		default:
			if err := checkScalar(v); err != nil {
				return nil, err
			}
			if sub, ok := v.(*Select); ok {
				v = adopt(Element(e), sub)
			}
		}
		e.subs[name] = v
	}
	return e, nil
}

func (e *Expression) predicate() {}

func (e *Expression) compile(d driver.Driver, p *param.Collector) (string, error) {
	var err error
	out := placeholderPattern.ReplaceAllStringFunc(e.template, func(m string) string {
		if err != nil {
			return m
		}
		switch v := e.subs[m[1:len(m)-1]].(type) {
		case Identifier:
			return d.QuoteIdentifier(string(v))
		case Alias:
			return d.QuoteAlias(string(v))
		default:
			var s string
			s, err = operand{value: v}.compile("expr", d, p)
			return s
		}
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (e *Expression) clone() Element {
	n := &Expression{element: e.detached(), template: e.template, subs: make(map[string]any, len(e.subs))}
	for k, v := range e.subs {
		if sub, ok := v.(*Select); ok {
			c := sub.clone().(*Select)
			c.parent = n
			v = c
		}
		n.subs[k] = v
	}
	return n
}
