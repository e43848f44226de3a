package qb

import (
	sqldriver "database/sql/driver"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// KV maps names to values, e.g. columns to new values or template names to substitutions.
type KV map[string]any

// Identifier is a column or table name, quoted segment by segment: u.id renders as "u"."id".
type Identifier string

// Alias is quoted as a single unit and never split on dots.
type Alias string

var aliasPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.$]*$`)

// NewAlias validates a.
func NewAlias(a string) (Alias, error) {
	a = strings.TrimSpace(a)
	if !aliasPattern.MatchString(a) {
		return "", invalidf("invalid alias %q", a)
	}
	return Alias(a), nil
}

// Literal is trusted SQL that is embedded verbatim. It is a predicate and can
// also stand in for a value, a column or a join specification.
type Literal struct {
	element
	sql string
}

func NewLiteral(sql string) (*Literal, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, invalidf("literal sql cannot be empty")
	}
	return &Literal{sql: sql}, nil
}

// Raw is NewLiteral for SQL known at compile time. It panics on empty input.
func Raw(sql string) *Literal {
	l, err := NewLiteral(sql)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Literal) String() string { return l.sql }

func (l *Literal) predicate() {}

func (l *Literal) compile(driver.Driver, *param.Collector) (string, error) {
	return l.sql, nil
}

func (l *Literal) clone() Element {
	return &Literal{element: l.detached(), sql: l.sql}
}

type identKind int

const (
	identName identKind = iota
	identAlias
	identRaw
)

// ident is an identifier argument after validation.
type ident struct {
	kind identKind
	text string
}

func toIdent(v any) (ident, error) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return ident{}, invalidf("identifier cannot be empty")
		}
		return ident{identName, strings.TrimSpace(x)}, nil
	case Identifier:
		if strings.TrimSpace(string(x)) == "" {
			return ident{}, invalidf("identifier cannot be empty")
		}
		return ident{identName, strings.TrimSpace(string(x))}, nil
	case Alias:
		a, err := NewAlias(string(x))
		if err != nil {
			return ident{}, err
		}
		return ident{identAlias, string(a)}, nil
	case *Literal:
		if x == nil {
			return ident{}, invalidf("identifier cannot be nil")
		}
		return ident{identRaw, x.sql}, nil
	default:
		return ident{}, invalidf("identifier must be a string, Identifier, Alias or *Literal, got %T", v)
	}
}

func (i ident) render(d driver.Driver) string {
	switch i.kind {
	case identAlias:
		return d.QuoteAlias(i.text)
	case identRaw:
		return i.text
	default:
		return d.QuoteIdentifier(i.text)
	}
}

// qualified reports whether the identifier already names its table.
func (i ident) qualified() bool {
	return i.kind != identName || strings.Contains(i.text, ".")
}

// checkScalar accepts the values that can be bound or embedded as one operand.
func checkScalar(v any) error {
	switch x := v.(type) {
	case nil, bool, string, []byte, time.Time, sqldriver.Valuer,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return nil
	case *Literal:
		if x == nil {
			return invalidf("literal value cannot be nil")
		}
		return nil
	case *Select:
		if x == nil {
			return invalidf("sub-select cannot be nil")
		}
		return nil
	}
	if _, ok := asList(v); ok {
		return invalidf("a list is not a scalar value")
	}
	return invalidf("unsupported value of type %T", v)
}

// asList unpacks any slice or array except []byte.
func asList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// operand is a value slot of a predicate.
type operand struct {
	value any
}

func newOperand(owner Element, v any) (operand, error) {
	if err := checkScalar(v); err != nil {
		return operand{}, err
	}
	if sub, ok := v.(*Select); ok {
		v = adopt[*Select](owner, sub)
	}
	return operand{value: v}, nil
}

func (o operand) compile(category string, d driver.Driver, p *param.Collector) (string, error) {
	switch v := o.value.(type) {
	case *Literal:
		return v.sql, nil
	case *Select:
		sql, err := v.compile(d, p)
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	default:
		return p.Create(category, v), nil
	}
}

func (o operand) clone(owner Element) operand {
	if sub, ok := o.value.(*Select); ok {
		c := sub.clone().(*Select)
		c.parent = owner
		return operand{value: c}
	}
	return o
}
