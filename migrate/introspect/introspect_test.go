package introspect

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, ddl ...string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

type countingQuerier struct {
	Querier
	calls int
}

func (c *countingQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	c.calls++
	return c.Querier.QueryContext(ctx, query, args...)
}

func TestNewIntrospector(t *testing.T) {
	for _, p := range []string{"postgres", "postgresql", "mysql", "sqlite", "sqlite3"} {
		_, err := NewIntrospector(p)
		assert.NoError(t, err, p)
	}
	_, err := NewIntrospector("mongodb")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestSQLiteTable(t *testing.T) {
	db := openSQLite(t,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score REAL DEFAULT 0)`,
		`CREATE TABLE tags (post_id INTEGER, tag TEXT, PRIMARY KEY (post_id, tag))`,
		`CREATE TABLE codes (code BIGINT PRIMARY KEY, label VARCHAR(10))`,
	)
	in := &SQLiteIntrospector{}
	ctx := context.Background()

	users, err := in.Table(ctx, db, "users")
	require.NoError(t, err)
	assert.Equal(t, "main", users.Schema)
	require.Len(t, users.Columns, 3)
	assert.Equal(t, "INTEGER", users.Columns[0].Type)
	assert.False(t, users.Columns[1].Nullable)
	require.NotNil(t, users.Columns[2].DefaultValue)
	assert.Equal(t, "0", *users.Columns[2].DefaultValue)
	col, ok := users.AutoIncrementKey()
	assert.True(t, ok)
	assert.Equal(t, "id", col)

	tags, err := in.Table(ctx, db, "tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"post_id", "tag"}, tags.PrimaryKey.Columns)
	_, ok = tags.AutoIncrementKey()
	assert.False(t, ok, "composite keys are never generated")

	codes, err := in.Table(ctx, db, "codes")
	require.NoError(t, err)
	_, ok = codes.AutoIncrementKey()
	assert.False(t, ok, "BIGINT does not alias the rowid")

	_, err = in.Table(ctx, db, "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCatalogCachesKeyMetadata(t *testing.T) {
	db := openSQLite(t,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE notes (body TEXT)`,
	)
	q := &countingQuerier{Querier: db}
	cat := NewCatalog(&SQLiteIntrospector{}, q)
	ctx := context.Background()

	col, ok, err := cat.AutoIncrementKey(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "id", col)

	_, _, err = cat.AutoIncrementKey(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 1, q.calls)

	_, ok, err = cat.AutoIncrementKey(ctx, "notes")
	require.NoError(t, err)
	assert.False(t, ok)

	cat.Invalidate("users")
	_, _, err = cat.AutoIncrementKey(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, 3, q.calls)

	cat.Invalidate()
	assert.Equal(t, 0, cat.Stats().Size)
}

func TestCatalogDoesNotCacheErrors(t *testing.T) {
	db := openSQLite(t)
	q := &countingQuerier{Querier: db}
	cat := NewCatalog(&SQLiteIntrospector{}, q)
	ctx := context.Background()

	_, _, err := cat.AutoIncrementKey(ctx, "later")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = db.Exec(`CREATE TABLE later (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	col, ok, err := cat.AutoIncrementKey(ctx, "later")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "id", col)
	assert.Equal(t, 2, q.calls)
}

func TestSplitName(t *testing.T) {
	s, n := splitName("public.users")
	assert.Equal(t, "public", s)
	assert.Equal(t, "users", n)

	s, n = splitName("users")
	assert.Empty(t, s)
	assert.Equal(t, "users", n)
}

func TestIsSequenceDefault(t *testing.T) {
	assert.True(t, isSequenceDefault("nextval('users_id_seq'::regclass)"))
	assert.False(t, isSequenceDefault("0"))
	assert.False(t, isSequenceDefault(""))
}
