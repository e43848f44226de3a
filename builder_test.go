package qb

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/golobby/qb/driver"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	debug []string
	warn  []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.debug = append(r.debug, fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Infof(string, ...any) {}

func (r *recordingLogger) Warnf(format string, args ...any) {
	r.warn = append(r.warn, fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Errorf(string, ...any) {}

func setupSqlite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, age INTEGER)`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew(t *testing.T) {
	t.Run("dialect by name", func(t *testing.T) {
		b, err := New(Config{Dialect: "mysql"})
		require.NoError(t, err)
		assert.Equal(t, "mysql", b.Driver().Name())

		b, err = New(Config{})
		require.NoError(t, err)
		assert.Equal(t, "ansi", b.Driver().Name())

		_, err = New(Config{Dialect: "oracle"})
		assert.ErrorIs(t, err, driver.ErrUnknownDialect)
	})

	t.Run("explicit driver wins", func(t *testing.T) {
		b, err := New(Config{Dialect: "mysql", Driver: driver.NewPostgres()})
		require.NoError(t, err)
		assert.Equal(t, "postgres", b.Driver().Name())
	})

	t.Run("dialect from a connection", func(t *testing.T) {
		b, err := New(Config{DB: setupSqlite(t)})
		require.NoError(t, err)
		assert.Equal(t, "sqlite3", b.Driver().Name())
	})

	t.Run("log level", func(t *testing.T) {
		level := LogLevelProd
		_, err := New(Config{LogLevel: &level})
		assert.NoError(t, err)

		level = LogLevel(7)
		_, err = New(Config{LogLevel: &level})
		assert.True(t, IsInvalidArgument(err))
	})
}

func TestBuilderLogging(t *testing.T) {
	t.Run("statements log through the configured logger", func(t *testing.T) {
		rec := &recordingLogger{}
		b, err := New(Config{Dialect: "postgres", Logger: rec})
		require.NoError(t, err)

		_, _, err = b.Select().From("users").Where(KV{"id": 1}).Compile(nil)
		require.NoError(t, err)
		require.Len(t, rec.debug, 1)
		assert.Contains(t, rec.debug[0], `SELECT * FROM "users" WHERE "id" = :eq1`)
		assert.Contains(t, rec.debug[0], ":eq1")

		_, _, err = b.Delete("users").Compile(nil)
		assert.True(t, IsCompile(err))
		require.Len(t, rec.warn, 1)
		assert.Contains(t, rec.warn[0], "postgres")
	})

	t.Run("package logger", func(t *testing.T) {
		rec := &recordingLogger{}
		SetLogger(rec)
		defer SetLogger(nil)

		_, err := NewSelect().From("users").SQL(nil)
		require.NoError(t, err)
		assert.Len(t, rec.debug, 1)
	})
}

func TestBuilderSqlite(t *testing.T) {
	db := setupSqlite(t)
	b, err := New(Config{DB: db})
	require.NoError(t, err)

	names := func(t *testing.T, s *Select) []string {
		t.Helper()
		query, args, err := s.ToSql(nil)
		require.NoError(t, err)
		rows, err := db.Query(query, args...)
		require.NoError(t, err)
		defer rows.Close()
		var out []string
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			out = append(out, name)
		}
		require.NoError(t, rows.Err())
		return out
	}

	exec := func(t *testing.T, query string, args []any, err error) int64 {
		t.Helper()
		require.NoError(t, err)
		res, err := db.Exec(query, args...)
		require.NoError(t, err)
		n, err := res.RowsAffected()
		require.NoError(t, err)
		return n
	}

	t.Run("insert", func(t *testing.T) {
		q, args, err := b.Insert("users").Columns("name", "age").
			Values("amirreza", 20).
			Values("milad", 30).
			Values("parsa", 40).
			ToSql(nil)
		assert.Equal(t, `INSERT INTO "users" ("name", "age") VALUES (?, ?), (?, ?), (?, ?)`, q)
		assert.Equal(t, int64(3), exec(t, q, args, err))
	})

	t.Run("select", func(t *testing.T) {
		s := b.Select("name").From("users").Where([]any{"age", ">=", 30}).OrderBy("name")
		assert.Equal(t, []string{"milad", "parsa"}, names(t, s))

		s = b.Select("name").From("users").Where(KV{"name": []string{"amirreza", "parsa"}}).OrderBy("id", "desc")
		assert.Equal(t, []string{"parsa", "amirreza"}, names(t, s))

		s = b.Select("name").From("users").OrderBy("id").Skip(1)
		assert.Equal(t, []string{"milad", "parsa"}, names(t, s))

		s = b.Select("name").From("users").OrderBy("id").Take(1).Skip(2)
		assert.Equal(t, []string{"parsa"}, names(t, s))
	})

	t.Run("update", func(t *testing.T) {
		q, args, err := b.Update("users").Set("age", 50).Where(KV{"name": "amirreza"}).ToSql(nil)
		assert.Equal(t, int64(1), exec(t, q, args, err))

		s := b.Select("name").From("users").Where([]any{"age", "between", 45, 55})
		assert.Equal(t, []string{"amirreza"}, names(t, s))
	})

	t.Run("delete", func(t *testing.T) {
		q, args, err := b.Delete("users").Where([]any{"age", "<", 45}).ToSql(nil)
		assert.Equal(t, int64(2), exec(t, q, args, err))

		s := b.Select("name").From("users")
		assert.Equal(t, []string{"amirreza"}, names(t, s))
	})
}
