package qb

import (
	"sort"
	"strings"
)

// SpecMode decides what ParseSpec does with an empty specification.
type SpecMode int

const (
	IgnoreEmpty SpecMode = iota
	ErrorOnEmpty
)

// ParseSpec builds a predicate from a compact specification:
//
//	"id > 42"                           literal SQL
//	KV{"id": 42}                        "id" = :eq1
//	KV{"id": []int{1, 2}}               "id" IN (:in1, :in2)
//	KV{"id": NewSelect(...)}            "id" IN (SELECT ...)
//	KV{"||": []any{"a IS TRUE", ...}}   nested set joined by OR
//	[]any{"||", spec}                   spec joined to its predecessor by OR
//	[]any{"id", ">=", 42}               comparison, IN, LIKE or IS by operator
//	[]any{"id", "notBetween", 1, 9}     BETWEEN family
//
// A Predicate is returned as is. The returned operator is empty unless the
// spec chose one. With IgnoreEmpty an empty spec yields a nil predicate and no error.
func ParseSpec(spec any, mode SpecMode) (Predicate, LogicalOp, error) {
	switch s := spec.(type) {
	case nil:
		return nil, "", invalidf("nil predicate spec")
	case Predicate:
		return s, "", nil
	case string:
		if strings.TrimSpace(s) == "" {
			return empty(mode)
		}
		l, err := NewLiteral(s)
		return l, "", err
	case KV:
		return parseMap(s, mode)
	case map[string]any:
		return parseMap(KV(s), mode)
	}
	if list, ok := asList(spec); ok {
		return parseTuple(list, mode)
	}
	return nil, "", invalidf("unsupported predicate spec of type %T", spec)
}

func empty(mode SpecMode) (Predicate, LogicalOp, error) {
	if mode == ErrorOnEmpty {
		return nil, "", invalidf("empty predicate spec")
	}
	return nil, "", nil
}

func parseMap(m KV, mode SpecMode) (Predicate, LogicalOp, error) {
	if len(m) == 0 {
		return empty(mode)
	}
	if len(m) > 1 {
		return nil, "", invalidf("a map spec must have exactly one entry, got %d", len(m))
	}
	for key, value := range m {
		if op, err := ParseLogicalOp(key); err == nil {
			list, ok := asList(value)
			if !ok {
				return nil, "", invalidf("%q expects a list of specs, got %T", key, value)
			}
			nested := NewSet(op)
			nested.spec(list, mode)
			if err := nested.Err(); err != nil {
				return nil, "", err
			}
			return nested, "", nil
		}
		if sub, ok := value.(*Select); ok {
			in, err := NewIn(key, sub)
			return in, "", err
		}
		if list, ok := asList(value); ok {
			in, err := NewIn(key, list)
			return in, "", err
		}
		c, err := NewComparison(key, OpEq, value)
		return c, "", err
	}
	return nil, "", nil
}

func parseTuple(t []any, mode SpecMode) (Predicate, LogicalOp, error) {
	switch len(t) {
	case 0:
		return empty(mode)
	case 2:
		name, ok := t[0].(string)
		if !ok {
			return nil, "", invalidf("first element of a pair spec must be AND or OR, got %T", t[0])
		}
		op, err := ParseLogicalOp(name)
		if err != nil {
			return nil, "", err
		}
		p, _, err := ParseSpec(t[1], mode)
		if err != nil || p == nil {
			return nil, "", err
		}
		return p, op, nil
	case 3:
		p, err := parseTriple(t[0], t[1], t[2])
		return p, "", err
	case 4:
		op, err := tupleOp(t[1])
		if err != nil {
			return nil, "", err
		}
		switch op {
		case OpBetween:
			p, err := NewBetween(t[0], t[2], t[3])
			return p, "", err
		case OpNotBetween:
			p, err := NewNotBetween(t[0], t[2], t[3])
			return p, "", err
		}
		return nil, "", invalidf("operator %q does not take two values", op)
	}
	return nil, "", invalidf("a list spec must have 2, 3 or 4 elements, got %d", len(t))
}

func tupleOp(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidf("operator must be a string, got %T", v)
	}
	return normalizeOp(s)
}

func parseTriple(id, rawOp, value any) (Predicate, error) {
	op, err := tupleOp(rawOp)
	if err != nil {
		return nil, err
	}
	if _, ok := comparisons[op]; ok {
		list, isList := asList(value)
		if !isList {
			return NewComparison(id, op, value)
		}
		switch op {
		case OpEq:
			return NewIn(id, list)
		case OpNeq, OpNe:
			return NewNotIn(id, list)
		}
		return nil, invalidf("operator %q cannot take a list", op)
	}
	switch op {
	case OpIn:
		return NewIn(id, value)
	case OpNotIn:
		return NewNotIn(id, value)
	case OpLike:
		return NewLike(id, value)
	case OpNotLike:
		return NewNotLike(id, value)
	case OpIs:
		return NewIs(id, value)
	case OpIsNot:
		return NewIsNot(id, value)
	}
	return nil, invalidf("operator %q does not take a single value", op)
}

// splitSpec turns a map with several entries into one spec per entry, by key order.
func splitSpec(spec any) []any {
	var m KV
	switch s := spec.(type) {
	case KV:
		m = s
	case map[string]any:
		m = s
	default:
		return []any{spec}
	}
	if len(m) < 2 {
		return []any{spec}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, KV{k: m[k]})
	}
	return out
}
