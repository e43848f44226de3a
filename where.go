package qb

import (
	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// clause is a keyword in front of one predicate set. The embedded set gives
// every clause the predicate methods (Equal, In, Open...).
type clause struct {
	element
	*Set
	keyword string
	parens  bool
}

func newClause(owner Element, keyword string, parens bool) clause {
	s := NewSet()
	s.parent = owner
	return clause{Set: s, keyword: keyword, parens: parens}
}

func (c *clause) compile(d driver.Driver, p *param.Collector) (string, error) {
	cond, err := c.Set.compile(d, p)
	if err != nil || cond == "" {
		return "", err
	}
	if c.parens {
		cond = "(" + cond + ")"
	}
	return c.keyword + " " + cond, nil
}

func (c *clause) cloneFor(owner Element) clause {
	s := c.Set.Clone()
	s.parent = owner
	return clause{element: c.detached(), Set: s, keyword: c.keyword, parens: c.parens}
}

// Parent returns the node owning the clause, not the set it wraps.
func (c *clause) Parent() Element { return c.element.Parent() }

// Conditions returns the wrapped predicate set.
func (c *clause) Conditions() *Set { return c.Set }

type Where struct{ clause }

// NewWhere returns a WHERE clause holding the given specs, see ParseSpec.
func NewWhere(specs ...any) *Where {
	w := &Where{}
	w.clause = newClause(w, "WHERE", false)
	w.Spec(specs...)
	return w
}

func (w *Where) clone() Element { return w.Clone() }

func (w *Where) Clone() *Where {
	n := &Where{}
	n.clause = w.cloneFor(n)
	return n
}

func (w *Where) Compile(d driver.Driver) (string, *param.Collector, error) { return Compile(w, d) }

type Having struct{ clause }

func NewHaving(specs ...any) *Having {
	h := &Having{}
	h.clause = newClause(h, "HAVING", false)
	h.Spec(specs...)
	return h
}

func (h *Having) clone() Element { return h.Clone() }

func (h *Having) Clone() *Having {
	n := &Having{}
	n.clause = h.cloneFor(n)
	return n
}

func (h *Having) Compile(d driver.Driver) (string, *param.Collector, error) { return Compile(h, d) }

// On is the condition of a join. It is always parenthesized when not empty.
type On struct{ clause }

func NewOn(specs ...any) *On {
	o := &On{}
	o.clause = newClause(o, "ON", true)
	o.Spec(specs...)
	return o
}

func (o *On) clone() Element { return o.Clone() }

func (o *On) Clone() *On {
	n := &On{}
	n.clause = o.cloneFor(n)
	return n
}

func (o *On) Compile(d driver.Driver) (string, *param.Collector, error) { return Compile(o, d) }
