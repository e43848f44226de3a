package qb

import (
	"testing"

	"github.com/golobby/qb/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	t.Run("all aggregator functions", func(t *testing.T) {
		s := NewSelect("id", "name",
			Aggregators.Max("age"), Aggregators.Min("weight"), Aggregators.Sum("balance"),
			Aggregators.Avg("height"), Aggregators.Count("*")).
			From("users")
		sql, p := compileAnsi(t, s)
		assert.Equal(t, `SELECT "id", "name", MAX("age"), MIN("weight"), SUM("balance"), AVG("height"), COUNT(*) FROM "users"`, sql)
		assert.Zero(t, p.Len())
	})

	t.Run("every clause in order", func(t *testing.T) {
		s := NewSelect("id", "name", As(Aggregators.Count("o.id"), "orders")).
			From("user", "u").
			LeftJoin("orders", "o", NewOn("o.user_id = u.id")).
			Where(KV{"u.enabled": true}).
			Where([]any{"u.age", "between", 18, 65}).
			GroupBy("u.id", "u.name").
			Having("COUNT(o.id) > 1").
			OrderBy("u.name DESC").
			OrderBy("u.id").
			Limit(10).
			Offset(20)
		require.NoError(t, s.Err())
		sql, p := compileAnsi(t, s)
		assert.Equal(t, `SELECT "u"."id", "u"."name", COUNT("o"."id") AS "orders" FROM "user" "u"`+
			` LEFT JOIN "orders" "o" ON (o.user_id = u.id)`+
			` WHERE "u"."enabled" = :eq1 AND "u"."age" BETWEEN :min2 AND :max3`+
			` GROUP BY "u"."id", "u"."name" HAVING COUNT(o.id) > 1`+
			` ORDER BY "u"."name" DESC, "u"."id" ASC [LIMIT 10 OFFSET 20]`, sql)
		assert.Equal(t, []any{true, 18, 65}, values(p))
	})

	t.Run("quantifier", func(t *testing.T) {
		sql, _ := compileAnsi(t, NewSelect("name").Distinct().From("user"))
		assert.Equal(t, `SELECT DISTINCT "name" FROM "user"`, sql)

		sql, _ = compileAnsi(t, NewSelect("name").Quantifier("all").From("user"))
		assert.Equal(t, `SELECT ALL "name" FROM "user"`, sql)

		s := NewSelect().Quantifier("first").From("user")
		assert.True(t, IsInvalidArgument(s.Err()))
	})

	t.Run("aliased columns", func(t *testing.T) {
		s := NewSelect(KV{"total": "amount", "n": Raw("COUNT(*)")}).From("t")
		sql, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT COUNT(*) AS "n", "amount" AS "total" FROM "t"`, sql)

		s = NewSelect("id", As(NewSelect(Aggregators.Count("*")).From("orders"), "n")).From("user")
		sql, _ = compileAnsi(t, s)
		assert.Equal(t, `SELECT "id", (SELECT COUNT(*) FROM "orders") AS "n" FROM "user"`, sql)

		s = NewSelect(As("id", "1st")).From("user")
		assert.True(t, IsInvalidArgument(s.Err()))
	})

	t.Run("sub-select in from", func(t *testing.T) {
		inner := NewSelect("id").From("user").Where(KV{"active": 1})
		s := NewSelect().From(inner, "t").Where([]any{"t.id", ">", 10})
		sql, p := compileAnsi(t, s)
		assert.Equal(t, `SELECT "t".* FROM (SELECT "id" FROM "user" WHERE "active" = :eq1) "t" WHERE "t"."id" > :gt2`, sql)
		assert.Equal(t, []any{1, 10}, values(p))

		s = NewSelect().From(NewSelect().From("user"))
		assert.True(t, IsInvalidArgument(s.Err()))
	})

	t.Run("joins qualify columns with the table", func(t *testing.T) {
		s := NewSelect("id", "o.total").From("user").InnerJoin("orders", "o", Using{"user_id"})
		sql, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT "user"."id", "o"."total" FROM "user" INNER JOIN "orders" "o" USING("user_id")`, sql)
		assert.Len(t, s.Joins(), 1)

		s = NewSelect().From("user").CrossJoin("roles", "").NaturalLeftJoin("profiles", "p")
		sql, _ = compileAnsi(t, s)
		assert.Equal(t, `SELECT "user".* FROM "user" CROSS JOIN "roles" NATURAL LEFT JOIN "profiles" "p"`, sql)

		s = NewSelect().From("user").Join("outer", "roles", "", nil)
		assert.True(t, IsInvalidArgument(s.Err()))
	})

	t.Run("an alias with a dot is quoted as one name", func(t *testing.T) {
		sql, _ := compileAnsi(t, NewSelect("id", "name").From("user", "u.x"))
		assert.Equal(t, `SELECT "u.x"."id", "u.x"."name" FROM "user" "u.x"`, sql)

		sql, _ = compileAnsi(t, NewSelect().From("user", "u.x"))
		assert.Equal(t, `SELECT "u.x".* FROM "user" "u.x"`, sql)

		sql, _ = compileAnsi(t, NewSelect("id").From("app.user").InnerJoin("orders", "o", Using{"user_id"}))
		assert.Equal(t, `SELECT "app"."user"."id" FROM "app"."user" INNER JOIN "orders" "o" USING("user_id")`, sql)
	})

	t.Run("where and or where", func(t *testing.T) {
		s := NewSelect().From("t").Where("a = 1").OrWhere("b = 2").AndWhere("c = 3")
		sql, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT * FROM "t" WHERE a = 1 OR b = 2 AND c = 3`, sql)

		s = NewSelect().From("t")
		s.WhereClause().Open().Equal("a", 1).Or().Equal("b", 2).Close().IsNotNull("c")
		sql, _ = compileAnsi(t, s)
		assert.Equal(t, `SELECT * FROM "t" WHERE ("a" = :eq1 OR "b" = :eq2) AND "c" IS NOT NULL`, sql)
	})

	t.Run("having and or having", func(t *testing.T) {
		s := NewSelect("dept").From("emp").GroupBy("dept").Having("COUNT(*) > 1").OrHaving("MAX(salary) > 10")
		sql, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT "dept" FROM "emp" GROUP BY "dept" HAVING COUNT(*) > 1 OR MAX(salary) > 10`, sql)
	})

	t.Run("attach", func(t *testing.T) {
		s := NewSelect().From("t").Attach(NewWhere("x = 1")).Attach(NewHaving("COUNT(*) > 2"))
		sql, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT * FROM "t" WHERE x = 1 HAVING COUNT(*) > 2`, sql)

		s = NewSelect().From("t").Attach(NewOn("a = b"))
		assert.True(t, IsStructure(s.Err()))
	})

	t.Run("a clause owned by another statement is copied", func(t *testing.T) {
		w := NewWhere("x = 1")
		a := NewSelect().From("a").SetWhere(w)
		b := NewSelect().From("b").SetWhere(w)
		assert.Same(t, w, a.WhereClause())
		assert.NotSame(t, w, b.WhereClause())

		w.Literal("y = 2")
		sql, _ := compileAnsi(t, a)
		assert.Equal(t, `SELECT * FROM "a" WHERE x = 1 AND y = 2`, sql)
		sql, _ = compileAnsi(t, b)
		assert.Equal(t, `SELECT * FROM "b" WHERE x = 1`, sql)
	})

	t.Run("table can only be set once", func(t *testing.T) {
		s := NewSelect().From("a").From("b")
		assert.True(t, IsStructure(s.Err()))
		_, _, err := s.Compile(nil)
		assert.True(t, IsStructure(err))
	})

	t.Run("missing table", func(t *testing.T) {
		_, _, err := NewSelect("id").Compile(nil)
		assert.True(t, IsCompile(err))
	})

	t.Run("order by", func(t *testing.T) {
		sql, _ := compileAnsi(t, NewSelect().From("t").OrderBy("a", "desc").OrderBy(Raw("RANDOM()")))
		assert.Equal(t, `SELECT * FROM "t" ORDER BY "a" DESC, RANDOM() ASC`, sql)

		s := NewSelect().From("t").OrderBy("a", "sideways")
		assert.True(t, IsInvalidArgument(s.Err()))
	})

	t.Run("paging per dialect", func(t *testing.T) {
		s := NewSelect().From("user").Skip(5)
		sql, p, err := s.Compile(driver.NewMySQL())
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM `user` LIMIT 18446744073709551615 OFFSET :offset1", sql)
		assert.Equal(t, []any{5}, values(p))

		sql, _, err = s.Compile(driver.NewSQLite())
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "user" LIMIT -1 OFFSET :offset1`, sql)

		sql, p, err = NewSelect().From("user").Take(-3).Compile(driver.NewPostgres())
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "user" LIMIT :limit1`, sql)
		assert.Equal(t, []any{0}, values(p))

		sql, _ = compileAnsi(t, NewSelect().From("user").Offset(-1))
		assert.Equal(t, `SELECT * FROM "user"`, sql)
	})

	t.Run("positional placeholders", func(t *testing.T) {
		s := NewSelect().From("user").Where(KV{"id": 42}).Limit(1)
		sql, args, err := s.ToSql(driver.NewPostgres())
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "user" WHERE "id" = $1 LIMIT $2`, sql)
		assert.Equal(t, []any{42, 1}, args)

		sql, args, err = s.ToSql(driver.NewMySQL())
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM `user` WHERE `id` = ? LIMIT ?", sql)
		assert.Equal(t, []any{42, 1}, args)
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := NewSelect("id").From("user", "u").Where("a = 1").LeftJoin("orders", "o", "o.user_id = u.id")
		c := s.Clone()
		c.Where("b = 2").Limit(3)
		c.Joins()[0].On().Literal("o.open")

		sql, _ := compileAnsi(t, s)
		assert.Equal(t, `SELECT "u"."id" FROM "user" "u" LEFT JOIN "orders" "o" ON (o.user_id = u.id) WHERE a = 1`, sql)
		sql, _ = compileAnsi(t, c)
		assert.Equal(t, `SELECT "u"."id" FROM "user" "u" LEFT JOIN "orders" "o" ON (o.user_id = u.id AND o.open) WHERE a = 1 AND b = 2 [LIMIT 3]`, sql)
	})
}
