package qb

import (
	"strings"
	"testing"

	"github.com/golobby/qb/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperAnsi shares the ANSI name but upper-cases identifiers.
type upperAnsi struct {
	driver.Driver
}

func (u upperAnsi) QuoteIdentifier(name string) string {
	return u.Driver.QuoteIdentifier(strings.ToUpper(name))
}

func TestCompileCache(t *testing.T) {
	t.Run("an unchanged tree is compiled once", func(t *testing.T) {
		s := NewSelect().From("user").Where(KV{"id": 1})
		sql1, p1, err := s.Compile(nil)
		require.NoError(t, err)
		sql2, p2, err := s.Compile(nil)
		require.NoError(t, err)
		assert.Equal(t, sql1, sql2)
		assert.Same(t, p1, p2)
	})

	t.Run("the cache is per driver", func(t *testing.T) {
		s := NewSelect().From("user")
		ansi, _, err := s.Compile(nil)
		require.NoError(t, err)
		mysql, _, err := s.Compile(driver.NewMySQL())
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "user"`, ansi)
		assert.Equal(t, "SELECT * FROM `user`", mysql)
	})

	t.Run("the cache is per driver instance", func(t *testing.T) {
		s := NewSelect("id").From("user")
		sql, _, err := s.Compile(nil)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "id" FROM "user"`, sql)

		upper := upperAnsi{driver.NewAnsi()}
		sql, p1, err := s.Compile(upper)
		require.NoError(t, err)
		assert.Equal(t, `SELECT "ID" FROM "USER"`, sql)

		_, p2, err := s.Compile(upper)
		require.NoError(t, err)
		assert.Same(t, p1, p2)

		sql, _, err = s.Compile(driver.NewAnsi())
		require.NoError(t, err)
		assert.Equal(t, `SELECT "id" FROM "user"`, sql)
	})

	t.Run("a change deep in the tree invalidates the root", func(t *testing.T) {
		s := NewSelect().From("user")
		nested := s.WhereClause().Open()
		nested.Equal("a", 1)
		sql, p1, err := s.Compile(nil)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "user" WHERE "a" = :eq1`, sql)

		nested.Or().Equal("b", 2)
		sql, p2, err := s.Compile(nil)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "user" WHERE ("a" = :eq1 OR "b" = :eq2)`, sql)
		assert.NotSame(t, p1, p2)
	})

	t.Run("a change in a sub-select invalidates the outer statement", func(t *testing.T) {
		sub := NewSelect("user_id").From("orders")
		s := NewSelect().From("user").Where(KV{"id": sub})
		before, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT * FROM "user" WHERE "id" IN (SELECT "user_id" FROM "orders")`, before)

		sub.Where("total > 10")
		after, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT * FROM "user" WHERE "id" IN (SELECT "user_id" FROM "orders" WHERE total > 10)`, after)
	})

	t.Run("a sibling tree is not affected", func(t *testing.T) {
		a := NewSelect().From("a").Where("x = 1")
		b := a.Clone()
		_, pa, _ := a.Compile(nil)
		b.Where("y = 2")
		_, pa2, _ := a.Compile(nil)
		assert.Same(t, pa, pa2)
	})
}

func TestTree(t *testing.T) {
	t.Run("a statement cannot be nested in itself", func(t *testing.T) {
		outer := NewSelect().From("user")
		sub := NewSelect("user_id").From("orders")
		outer.Where(KV{"id": sub})
		sub.SetWhere(outer.WhereClause())
		assert.True(t, IsStructure(sub.Err()))

		s := NewSelect().From("t")
		s.Column(s, "self")
		assert.True(t, IsStructure(s.Err()))

		inner := NewSelect("id").From("orders")
		j, err := NewJoin(JoinLeft, inner, "o", nil)
		require.NoError(t, err)
		inner.AddJoin(j)
		assert.True(t, IsStructure(inner.Err()))
	})

	t.Run("parents", func(t *testing.T) {
		s := NewSelect().From("user")
		w := s.WhereClause()
		nested := w.Open()
		assert.Nil(t, s.Parent())
		assert.Same(t, s, w.Parent())
		assert.Same(t, w, w.Conditions().Parent())
		assert.Same(t, w.Conditions(), nested.Parent())
	})

	t.Run("attaching an owned node copies it", func(t *testing.T) {
		shared := NewSet().Equal("a", 1).Equal("b", 2)
		first := NewSet().Add(shared)
		second := NewSet().Add(shared)
		assert.Same(t, first, shared.Parent())

		shared.Equal("c", 3)
		sql, _ := compileAnsi(t, first)
		assert.Equal(t, `("a" = :eq1 AND "b" = :eq2 AND "c" = :eq3)`, sql)
		sql, _ = compileAnsi(t, second)
		assert.Equal(t, `("a" = :eq1 AND "b" = :eq2)`, sql)
	})

	t.Run("a nested node compiles with a fresh collector", func(t *testing.T) {
		s := NewSelect().From("user")
		s.Where(KV{"a": 1}).Where(KV{"b": 2})
		sql, p, err := Compile(s.WhereClause(), nil)
		require.NoError(t, err)
		assert.Equal(t, `WHERE "a" = :eq1 AND "b" = :eq2`, sql)
		assert.Equal(t, 2, p.Len())
	})

	t.Run("sql helper", func(t *testing.T) {
		sql, err := SQL(NewWhere("a = 1"), driver.NewSQLite())
		require.NoError(t, err)
		assert.Equal(t, "WHERE a = 1", sql)
	})
}
