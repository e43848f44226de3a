// Package qb builds SQL statements as a tree of typed nodes and compiles the
// tree into parameterized SQL for a chosen dialect.
package qb

import (
	"reflect"

	"github.com/golobby/qb/driver"
	"github.com/golobby/qb/param"
)

// Element is a node of a statement tree.
type Element interface {
	// Parent returns the node that owns this one, or nil for a top-level node.
	Parent() Element

	base() *element
	// compile renders the node using the collector of the top-level compile.
	compile(d driver.Driver, p *param.Collector) (string, error)
	// clone returns a deep copy without a parent.
	clone() Element
}

type compiled struct {
	driver driver.Driver
	gen    uint64
	sql    string
	params *param.Collector
}

// element is embedded by every node. gen is bumped on every mutation of the
// node or of any of its descendants and is what the cache is checked against.
type element struct {
	parent Element
	gen    uint64
	cache  *compiled
}

func (e *element) Parent() Element { return e.parent }

func (e *element) base() *element { return e }

// touch invalidates the cache of the node and of every ancestor.
func (e *element) touch() {
	e.gen++
	for p := e.parent; p != nil; p = p.base().parent {
		p.base().gen++
	}
}

// detached is the element state a clone starts from.
func (e *element) detached() element {
	return element{gen: e.gen}
}

// isNil reports whether e is nil or a typed nil pointer.
func isNil(e Element) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// owns reports whether child is parent or one of its ancestors.
func owns(child, parent Element) bool {
	cb := child.base()
	for n := parent; n != nil; n = n.base().parent {
		if n.base() == cb {
			return true
		}
	}
	return false
}

// checkAttach rejects attachments that would turn the tree into a cycle.
func checkAttach(parent, child Element) error {
	if owns(child, parent) {
		return structuref("cannot attach a node to itself or its descendant")
	}
	return nil
}

// adopt attaches child to parent. A child that already belongs to another
// parent is cloned first so two trees never share a node. Callers check
// checkAttach first.
func adopt[T Element](parent Element, child T) T {
	b := child.base()
	if b.parent != nil && b.parent != parent {
		child = child.clone().(T)
		b = child.base()
	}
	b.parent = parent
	b.cache = nil
	return child
}

// Compile compiles e as a top-level node. A nil driver means the ANSI baseline.
func Compile(e Element, d driver.Driver) (string, *param.Collector, error) {
	return compileTop(e, d, defaultLogger)
}

// SQL is Compile without the bindings.
func SQL(e Element, d driver.Driver) (string, error) {
	sql, _, err := Compile(e, d)
	return sql, err
}

// ansi is the driver used when none is given.
var ansi = driver.NewAnsi()

// sameDriver compares driver instances. Drivers of a non-comparable type never match.
func sameDriver(a, b driver.Driver) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

func compileTop(e Element, d driver.Driver, log Logger) (string, *param.Collector, error) {
	if d == nil {
		d = ansi
	}
	b := e.base()
	if c := b.cache; c != nil && c.gen == b.gen && sameDriver(c.driver, d) {
		return c.sql, c.params, nil
	}

	p := param.NewCollector()
	sql, err := e.compile(d, p)
	if err != nil {
		log.Warnf("compile failed for %s: %s", d.Name(), err)
		return "", nil, err
	}
	if b.parent == nil {
		b.cache = &compiled{driver: d, gen: b.gen, sql: sql, params: p}
	}
	log.Debugf("%s\n%s", sql, p)
	return sql, p, nil
}

