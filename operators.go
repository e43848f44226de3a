package qb

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// LogicalOp joins two predicates of a Set.
type LogicalOp string

const (
	AND LogicalOp = "AND"
	OR  LogicalOp = "OR"
)

// ParseLogicalOp accepts AND, OR, && and || in any case.
func ParseLogicalOp(op string) (LogicalOp, error) {
	switch strings.ToUpper(strings.TrimSpace(op)) {
	case "AND", "&&":
		return AND, nil
	case "OR", "||":
		return OR, nil
	}
	return "", invalidf("unsupported logical operator %q", op)
}

const (
	OpEq         = "="
	OpNeq        = "!="
	OpNe         = "<>"
	OpLt         = "<"
	OpLte        = "<="
	OpGte        = ">="
	OpGt         = ">"
	OpIn         = "IN"
	OpNotIn      = "NOT IN"
	OpBetween    = "BETWEEN"
	OpNotBetween = "NOT BETWEEN"
	OpLike       = "LIKE"
	OpNotLike    = "NOT LIKE"
	OpIs         = "IS"
	OpIsNot      = "IS NOT"
	OpExists     = "EXISTS"
	OpNotExists  = "NOT EXISTS"
)

// comparisons maps every comparison operator to the marker category of its operand.
var comparisons = map[string]string{
	OpEq:  "eq",
	OpNeq: "neq",
	OpNe:  "ne",
	OpLt:  "lt",
	OpLte: "lte",
	OpGte: "gte",
	OpGt:  "gt",
}

var wordAliases = map[string]string{
	"EQ":                    OpEq,
	"EQUAL":                 OpEq,
	"NEQ":                   OpNeq,
	"NOT EQUAL":             OpNeq,
	"NE":                    OpNe,
	"LT":                    OpLt,
	"LESS THAN":             OpLt,
	"LTE":                   OpLte,
	"LESS THAN EQUAL":       OpLte,
	"LESS THAN OR EQUAL":    OpLte,
	"GT":                    OpGt,
	"GREATER THAN":          OpGt,
	"GTE":                   OpGte,
	"GREATER THAN EQUAL":    OpGte,
	"GREATER THAN OR EQUAL": OpGte,
	"NOTIN":                 OpNotIn,
	"NOTLIKE":               OpNotLike,
	"NOTBETWEEN":            OpNotBetween,
	"ISNOT":                 OpIsNot,
	"NOTEXISTS":             OpNotExists,
}

var keywordOps = map[string]bool{
	OpIn: true, OpNotIn: true,
	OpBetween: true, OpNotBetween: true,
	OpLike: true, OpNotLike: true,
	OpIs: true, OpIsNot: true,
	OpExists: true, OpNotExists: true,
}

// normalizeOp turns an operator or one of its word aliases (notIn, is_not,
// NOT BETWEEN, lte) into its canonical SQL spelling. Unknown operators are an error.
func normalizeOp(op string) (string, error) {
	op = strings.TrimSpace(op)
	if strings.IndexFunc(op, unicode.IsLetter) < 0 {
		if _, ok := comparisons[op]; ok {
			return op, nil
		}
		return "", invalidf("unsupported operator %q", op)
	}
	words := strings.ToUpper(strings.Join(strings.Fields(strcase.ToDelimited(op, ' ')), " "))
	if canonical, ok := wordAliases[words]; ok {
		return canonical, nil
	}
	if keywordOps[words] {
		return words, nil
	}
	return "", invalidf("unsupported operator %q", op)
}

func normalizeComparison(op string) (string, error) {
	canonical, err := normalizeOp(op)
	if err != nil {
		return "", err
	}
	if _, ok := comparisons[canonical]; !ok {
		return "", invalidf("%q is not a comparison operator", op)
	}
	return canonical, nil
}
