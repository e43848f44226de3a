package qb

import (
	"strings"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

type entry struct {
	op   LogicalOp
	pred Predicate
}

// Set is an ordered group of predicates joined by AND/OR. Sets nest: a
// nested set with two or more non-empty predicates is parenthesized, a set
// directly under a clause never is, and an empty set renders nothing at all.
//
// Chained calls never fail on the spot. The first error is kept, later calls
// are ignored and the error is reported by Err and by every compile of a tree
// containing the set.
type Set struct {
	element
	entries   []entry
	defaultOp LogicalOp
	nextOp    LogicalOp
	err       error
}

// NewSet returns an empty set whose predicates are joined with op, AND by default.
func NewSet(op ...LogicalOp) *Set {
	s := &Set{defaultOp: AND}
	if len(op) > 0 && op[0] != "" {
		s.defaultOp = op[0]
	}
	return s
}

func (s *Set) predicate() {}

// Err returns the first error recorded on s or on any set nested in it.
func (s *Set) Err() error {
	if s.err != nil {
		return s.err
	}
	for _, e := range s.entries {
		if nested, ok := e.pred.(*Set); ok {
			if err := nested.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) fail(err error) *Set {
	if s.err == nil {
		s.err = err
		s.touch()
	}
	return s
}

// Len returns the number of predicates directly in s, empty ones included.
func (s *Set) Len() int { return len(s.entries) }

// Empty reports whether s has no predicates.
func (s *Set) Empty() bool { return len(s.entries) == 0 }

// Add appends p joined by op, or by the operator chosen with And/Or, or by the default one.
func (s *Set) Add(p Predicate, op ...LogicalOp) *Set {
	next := s.nextOp
	s.nextOp = ""
	if s.err != nil {
		return s
	}
	if isNil(p) {
		return s.fail(invalidf("predicate cannot be nil"))
	}
	if _, isClause := p.(interface{ Conditions() *Set }); isClause {
		return s.fail(structuref("cannot nest a %T clause in a predicate set", p))
	}
	o := s.defaultOp
	if next != "" {
		o = next
	}
	if len(op) > 0 && op[0] != "" {
		o = op[0]
	}
	if o != AND && o != OR {
		return s.fail(invalidf("unsupported logical operator %q", o))
	}
	if err := checkAttach(s, p); err != nil {
		return s.fail(err)
	}
	p = adopt[Predicate](s, p)
	s.entries = append(s.entries, entry{op: o, pred: p})
	s.touch()
	return s
}

func (s *Set) add(p Predicate, err error) *Set {
	if err != nil {
		s.nextOp = ""
		return s.fail(err)
	}
	return s.Add(p)
}

// And makes the next predicate join with AND.
func (s *Set) And() *Set {
	s.nextOp = AND
	return s
}

// Or makes the next predicate join with OR.
func (s *Set) Or() *Set {
	s.nextOp = OR
	return s
}

// Open appends a nested set joined to the previous predicate by op, or by the
// operator chosen with And/Or, and returns it. The nested set inherits the
// default operator of s.
func (s *Set) Open(op ...LogicalOp) *Set {
	child := NewSet(s.defaultOp)
	if s.err != nil {
		s.nextOp = ""
		child.parent = s
		return child
	}
	s.Add(child, op...)
	return child
}

// Close returns the set that s was opened from. Closing a top-level set is an error.
func (s *Set) Close() *Set {
	if parent, ok := s.parent.(*Set); ok {
		return parent
	}
	return s.fail(structuref("close called on a top-level predicate set"))
}

// Spec adds the predicate described by spec. Empty specs are ignored.
// See ParseSpec for the accepted shapes.
func (s *Set) Spec(specs ...any) *Set {
	return s.spec(specs, IgnoreEmpty)
}

// SpecStrict is Spec but an empty spec is an error.
func (s *Set) SpecStrict(specs ...any) *Set {
	return s.spec(specs, ErrorOnEmpty)
}

func (s *Set) spec(specs []any, mode SpecMode) *Set {
	for _, spec := range specs {
		if s.err != nil {
			return s
		}
		for _, part := range splitSpec(spec) {
			p, op, err := ParseSpec(part, mode)
			if err != nil {
				return s.fail(err)
			}
			if p == nil {
				continue
			}
			s.Add(p, op)
		}
	}
	return s
}

// Literal adds trusted SQL verbatim.
func (s *Set) Literal(sql string) *Set { return s.add(NewLiteral(sql)) }

// Expression adds a template predicate, e.g. Expression("{col} > {min}", KV{"col": Identifier("age"), "min": 18}).
func (s *Set) Expression(template string, subs KV) *Set {
	return s.add(NewExpression(template, subs))
}

// Expr is Expression.
func (s *Set) Expr(template string, subs KV) *Set { return s.Expression(template, subs) }

// Compare adds a comparison with any supported operator.
func (s *Set) Compare(id any, op string, value any) *Set {
	return s.add(NewComparison(id, op, value))
}

func (s *Set) Equal(id, value any) *Set            { return s.Compare(id, OpEq, value) }
func (s *Set) Eq(id, value any) *Set               { return s.Equal(id, value) }
func (s *Set) NotEqual(id, value any) *Set         { return s.Compare(id, OpNeq, value) }
func (s *Set) Neq(id, value any) *Set              { return s.NotEqual(id, value) }
func (s *Set) Ne(id, value any) *Set               { return s.Compare(id, OpNe, value) }
func (s *Set) LessThan(id, value any) *Set         { return s.Compare(id, OpLt, value) }
func (s *Set) Lt(id, value any) *Set               { return s.LessThan(id, value) }
func (s *Set) LessThanEqual(id, value any) *Set    { return s.Compare(id, OpLte, value) }
func (s *Set) Lte(id, value any) *Set              { return s.LessThanEqual(id, value) }
func (s *Set) GreaterThan(id, value any) *Set      { return s.Compare(id, OpGt, value) }
func (s *Set) Gt(id, value any) *Set               { return s.GreaterThan(id, value) }
func (s *Set) GreaterThanEqual(id, value any) *Set { return s.Compare(id, OpGte, value) }
func (s *Set) Gte(id, value any) *Set              { return s.GreaterThanEqual(id, value) }

func (s *Set) Between(id, min, max any) *Set    { return s.add(NewBetween(id, min, max)) }
func (s *Set) NotBetween(id, min, max any) *Set { return s.add(NewNotBetween(id, min, max)) }

func (s *Set) In(id any, values ...any) *Set    { return s.add(NewIn(id, values...)) }
func (s *Set) NotIn(id any, values ...any) *Set { return s.add(NewNotIn(id, values...)) }

func (s *Set) Like(id, pattern any) *Set    { return s.add(NewLike(id, pattern)) }
func (s *Set) NotLike(id, pattern any) *Set { return s.add(NewNotLike(id, pattern)) }

func (s *Set) Is(id, value any) *Set    { return s.add(NewIs(id, value)) }
func (s *Set) IsNot(id, value any) *Set { return s.add(NewIsNot(id, value)) }
func (s *Set) IsNull(id any) *Set       { return s.Is(id, nil) }
func (s *Set) IsNotNull(id any) *Set    { return s.IsNot(id, nil) }
func (s *Set) IsTrue(id any) *Set       { return s.Is(id, true) }
func (s *Set) IsFalse(id any) *Set      { return s.Is(id, false) }
func (s *Set) IsUnknown(id any) *Set    { return s.Is(id, "unknown") }
func (s *Set) IsNotUnknown(id any) *Set { return s.IsNot(id, "unknown") }

func (s *Set) Exists(sub *Select) *Set    { return s.add(NewExists(sub)) }
func (s *Set) NotExists(sub *Select) *Set { return s.add(NewNotExists(sub)) }

func (s *Set) All(id any, op string, sub *Select) *Set {
	return s.add(NewQuantified(id, op, All, sub))
}

func (s *Set) Any(id any, op string, sub *Select) *Set {
	return s.add(NewQuantified(id, op, Any, sub))
}

func (s *Set) Some(id any, op string, sub *Select) *Set {
	return s.add(NewQuantified(id, op, Some, sub))
}

func (s *Set) compile(d driver.Driver, p *param.Collector) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	var (
		sb strings.Builder
		n  int
	)
	for _, e := range s.entries {
		sql, err := e.pred.compile(d, p)
		if err != nil {
			return "", err
		}
		if sql == "" {
			continue
		}
		if n > 0 {
			sb.WriteString(" " + string(e.op) + " ")
		}
		sb.WriteString(sql)
		n++
	}
	if _, nested := s.parent.(*Set); nested && n > 1 {
		return "(" + sb.String() + ")", nil
	}
	return sb.String(), nil
}

func (s *Set) clone() Element {
	return s.Clone()
}

// Clone returns a deep copy of s without a parent.
func (s *Set) Clone() *Set {
	n := &Set{element: s.detached(), defaultOp: s.defaultOp, nextOp: s.nextOp, err: s.err}
	for _, e := range s.entries {
		p := e.pred.clone().(Predicate)
		p.base().parent = n
		n.entries = append(n.entries, entry{op: e.op, pred: p})
	}
	return n
}

// Compile compiles s as a top-level condition.
func (s *Set) Compile(d driver.Driver) (string, *param.Collector, error) {
	return Compile(s, d)
}
