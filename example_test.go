package qb_test

import (
	"fmt"

	"github.com/golobby/qb"
	"github.com/golobby/qb/driver"
)

func ExampleSelect() {
	s := qb.NewSelect("id", "name").
		From("users").
		Where(qb.KV{"id": 42}).
		OrderBy("name")

	sql, args, err := s.ToSql(driver.NewPostgres())
	fmt.Println(sql)
	fmt.Println(args, err)
	// Output:
	// SELECT "id", "name" FROM "users" WHERE "id" = $1 ORDER BY "name" ASC
	// [42] <nil>
}

func ExampleWhere() {
	w := qb.NewWhere(qb.KV{"enabled": true})
	w.Open().Like("name", "a%").Or().Like("name", "b%").Close().IsNull("deleted_at")

	sql, p, _ := w.Compile(nil)
	fmt.Println(sql)
	fmt.Println(p.Values())
	// Output:
	// WHERE "enabled" = :eq1 AND ("name" LIKE :like2 OR "name" LIKE :like3) AND "deleted_at" IS NULL
	// map[eq1:true like2:a% like3:b%]
}

func ExampleBuilder() {
	b, err := qb.New(qb.Config{Dialect: "mysql"})
	if err != nil {
		panic(err)
	}
	sql, args, _ := b.Update("users").Set("name", "amirreza").Where(qb.KV{"id": 1}).ToSql(nil)
	fmt.Println(sql)
	fmt.Println(args)
	// Output:
	// UPDATE `users` SET `name` = ? WHERE `id` = ?
	// [amirreza 1]
}

func ExampleParseSpec() {
	s := qb.NewSelect().From("orders").Where(
		[]any{"total", ">=", 100},
		[]any{"||", qb.KV{"status": []string{"paid", "shipped"}}},
	)
	sql, _ := s.SQL(nil)
	fmt.Println(sql)
	// Output:
	// SELECT * FROM "orders" WHERE "total" >= :gte1 OR "status" IN (:in2, :in3)
}
