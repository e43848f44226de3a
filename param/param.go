// Package param holds the named parameters produced while compiling a statement tree.
package param

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/table"
)

// Type is a hint about how a bound value should be sent to the database.
type Type int

const (
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBytes
	TypeTime
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBytes:
		return "bytes"
	case TypeTime:
		return "time"
	default:
		return "string"
	}
}

// TypeOf guesses the Type of v.
func TypeOf(v any) Type {
	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil {
			return TypeString
		}
		return TypeOf(inner)
	}
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case []byte:
		return TypeBytes
	case time.Time:
		return TypeTime
	default:
		return TypeString
	}
}

type Binding struct {
	Name  string
	Value any
	Type  Type
}

// Collector hands out unique marker names for one compile pass and remembers
// the value bound to each of them. It is not safe for concurrent use.
type Collector struct {
	seq   int
	order []string
	binds map[string]Binding
}

func NewCollector() *Collector {
	return &Collector{binds: map[string]Binding{}}
}

// Create registers value under a fresh name built from category and returns
// the marker to embed in SQL, e.g. ":eq3".
func (c *Collector) Create(category string, value any, typ ...Type) string {
	if c.binds == nil {
		c.binds = map[string]Binding{}
	}
	c.seq++
	name := fmt.Sprintf("%s%d", category, c.seq)
	t := TypeOf(value)
	if len(typ) > 0 {
		t = typ[0]
	}
	c.order = append(c.order, name)
	c.binds[name] = Binding{Name: name, Value: value, Type: t}
	return ":" + name
}

func (c *Collector) Len() int {
	return len(c.order)
}

// Bindings returns every binding in creation order.
func (c *Collector) Bindings() []Binding {
	out := make([]Binding, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.binds[name])
	}
	return out
}

// Value returns the value bound to name. A leading colon is accepted.
func (c *Collector) Value(name string) (any, bool) {
	b, ok := c.binds[strings.TrimPrefix(name, ":")]
	return b.Value, ok
}

// Values returns a name to value map.
func (c *Collector) Values() map[string]any {
	out := make(map[string]any, len(c.binds))
	for name, b := range c.binds {
		out[name] = b.Value
	}
	return out
}

// Names returns marker names without the colon, in creation order.
func (c *Collector) Names() []string {
	return append([]string(nil), c.order...)
}

// Positional rewrites every known :name marker outside quoted text into the
// placeholder returned for its 1-based position and returns the arguments in
// the same order. Markers that appear more than once are bound once per use.
func (c *Collector) Positional(query string, placeholder func(n int) string) (string, []any) {
	var (
		sb    strings.Builder
		args  []any
		quote byte
	)
	sb.Grow(len(query))
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if quote != 0 {
			sb.WriteByte(ch)
			if ch == '\\' && quote == '\'' && i+1 < len(query) {
				i++
				sb.WriteByte(query[i])
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
			sb.WriteByte(ch)
			continue
		case ':':
			if i+1 < len(query) && query[i+1] == ':' {
				sb.WriteString("::")
				i++
				continue
			}
			j := i + 1
			for j < len(query) && isNameByte(query[j]) {
				j++
			}
			if b, ok := c.binds[query[i+1:j]]; ok && j > i+1 {
				args = append(args, b.Value)
				sb.WriteString(placeholder(len(args)))
				i = j - 1
				continue
			}
		}
		sb.WriteByte(ch)
	}
	return sb.String(), args
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// String renders the bindings as a table, mostly for debug logs.
func (c *Collector) String() string {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"Marker", "Value", "Type"})
	for _, b := range c.Bindings() {
		w.AppendRow(table.Row{":" + b.Name, fmt.Sprintf("%v", b.Value), b.Type.String()})
	}
	return w.Render()
}
