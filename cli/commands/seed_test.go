package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/prisma-bulk/cli/internal/config"
	"github.com/satishbabariya/prisma-bulk/cli/internal/seedfile"
	"github.com/satishbabariya/prisma-bulk/cli/internal/ui"
	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
	"github.com/satishbabariya/prisma-bulk/runtime/client"
)

func init() {
	ui.Output = io.Discard
}

func newTestDB(t *testing.T) (string, *client.PrismaClient) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.db")
	dsn := path + "?_busy_timeout=5000"

	c, err := client.NewPrismaClient("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { c.Disconnect(context.Background()) })

	_, err = c.DB().Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER)`)
	require.NoError(t, err)
	return dsn, c
}

func testConfig(commitEvery int) *config.Config {
	defaults := bulk.DefaultOptions()
	return &config.Config{
		Provider:                    "sqlite",
		DatabaseURL:                 "unused",
		UseTransactionWhenAvailable: defaults.UseTransactionWhenAvailable,
		UseTableLocks:               defaults.UseTableLocks,
		MaxRowsToInsert:             defaults.MaxRowsToInsert,
		CommitEvery:                 commitEvery,
	}
}

func csvReader(t *testing.T, data string) seedfile.Reader {
	t.Helper()
	r, err := seedfile.NewReader(strings.NewReader(data), seedfile.FormatCSV, seedfile.CompressionNone)
	require.NoError(t, err)
	return r
}

func countRows(t *testing.T, c *client.PrismaClient) int {
	t.Helper()
	var n int
	require.NoError(t, c.DB().QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

func TestSeedTableBatches(t *testing.T) {
	_, c := newTestDB(t)
	r := csvReader(t, "name,age\na,1\nb,2\nc,3\nd,\ne,5\n")

	summary, err := seedTable(context.Background(), c, testConfig(2), "users", r, seedOptions{yes: true})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Read)
	assert.Equal(t, 0, summary.Rejected)
	require.Len(t, summary.Reports, 3)
	for _, rep := range summary.Reports {
		assert.True(t, rep.Succeeded())
		assert.Equal(t, []string{"users"}, rep.Tables)
	}
	assert.Equal(t, 2, summary.Reports[0].RowsInserted)
	assert.Equal(t, 1, summary.Reports[2].RowsInserted)
	assert.Equal(t, 5, countRows(t, c))

	var maxID int64
	require.NoError(t, c.DB().QueryRow(`SELECT MAX(id) FROM users`).Scan(&maxID))
	assert.Equal(t, int64(5), maxID)

	var age *int64
	require.NoError(t, c.DB().QueryRow(`SELECT age FROM users WHERE name = 'd'`).Scan(&age))
	assert.Nil(t, age)
}

func TestSeedTableStopsAtFailedBatch(t *testing.T) {
	_, c := newTestDB(t)
	r := csvReader(t, "name,age\na,1\nb,2\n")
	// users has no nickname column
	data := "name,nickname\nc,x\n"

	summary, err := seedTable(context.Background(), c, testConfig(2), "users", r, seedOptions{yes: true})
	require.NoError(t, err)
	require.Len(t, summary.Reports, 1)

	summary, err = seedTable(context.Background(), c, testConfig(2), "users", csvReader(t, data), seedOptions{yes: true})
	require.Error(t, err)
	require.Len(t, summary.Reports, 1)
	assert.False(t, summary.Reports[0].Succeeded())
	assert.Equal(t, bulk.StageRolledBack, summary.Reports[0].Stage)
	assert.Equal(t, 2, countRows(t, c))
}

func TestSeedTableAsksBeforeAppending(t *testing.T) {
	_, c := newTestDB(t)
	_, err := c.DB().Exec(`INSERT INTO users (id, name) VALUES (7, 'existing')`)
	require.NoError(t, err)

	var asked string
	old := confirm
	confirm = func(message string) (bool, error) {
		asked = message
		return false, nil
	}
	t.Cleanup(func() { confirm = old })

	_, err = seedTable(context.Background(), c, testConfig(10), "users", csvReader(t, "name\na\n"), seedOptions{})
	assert.ErrorIs(t, err, errSeedDeclined)
	assert.Contains(t, asked, "max id is 7")
	assert.Equal(t, 1, countRows(t, c))

	confirm = func(string) (bool, error) { return true, nil }
	summary, err := seedTable(context.Background(), c, testConfig(10), "users", csvReader(t, "name\na\n"), seedOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reports[0].RowsInserted)

	var id int64
	require.NoError(t, c.DB().QueryRow(`SELECT id FROM users WHERE name = 'a'`).Scan(&id))
	assert.Equal(t, int64(8), id)
}

func TestSeedTableRowsWithDifferentKeys(t *testing.T) {
	_, c := newTestDB(t)
	r, err := seedfile.NewReader(strings.NewReader(`{"name": "a", "age": 1}
{"name": "b"}
{"age": 3, "name": "c"}
`), seedfile.FormatJSONL, seedfile.CompressionNone)
	require.NoError(t, err)

	summary, err := seedTable(context.Background(), c, testConfig(10), "users", r, seedOptions{yes: true})
	require.NoError(t, err)
	require.Len(t, summary.Reports, 1)
	assert.Equal(t, 3, summary.Reports[0].RowsInserted)

	var age *int64
	require.NoError(t, c.DB().QueryRow(`SELECT age FROM users WHERE name = 'b'`).Scan(&age))
	assert.Nil(t, age)
	require.NoError(t, c.DB().QueryRow(`SELECT age FROM users WHERE name = 'c'`).Scan(&age))
	require.NotNil(t, age)
	assert.Equal(t, int64(3), *age)
}

func TestSeedTableRetryAfterReconciledCommit(t *testing.T) {
	_, c := newTestDB(t)

	// the first commit runs to reconcile inside a savepoint that is then
	// discarded, and reports a lock conflict
	calls := 0
	old := commitBatch
	commitBatch = func(ctx context.Context, sess *client.Session, saver *bulk.Saver) error {
		calls++
		if calls > 1 {
			return saver.Commit(ctx)
		}
		require.NoError(t, sess.Begin(ctx))
		require.NoError(t, saver.Commit(ctx))
		require.NoError(t, sess.Rollback(ctx))
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	}
	t.Cleanup(func() { commitBatch = old })

	summary, err := seedTable(context.Background(), c, testConfig(10), "users", csvReader(t, "name\na\nb\nc\n"), seedOptions{yes: true})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, summary.Rejected)
	require.Len(t, summary.Reports, 2)
	assert.Equal(t, 3, summary.Reports[1].RowsInserted)
	assert.Equal(t, 3, countRows(t, c))
}

func TestSeedTableEmptyFile(t *testing.T) {
	_, c := newTestDB(t)
	summary, err := seedTable(context.Background(), c, testConfig(10), "users", csvReader(t, ""), seedOptions{yes: true})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Read)
	assert.Empty(t, summary.Reports)
}

func TestResolvePrimaryKey(t *testing.T) {
	_, c := newTestDB(t)
	_, err := c.DB().Exec(`CREATE TABLE tags (a TEXT, b TEXT, PRIMARY KEY (a, b))`)
	require.NoError(t, err)

	ctx := context.Background()
	sess, err := c.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	pk, err := resolvePrimaryKey(ctx, sess, "users", "")
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	pk, err = resolvePrimaryKey(ctx, sess, "tags", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", pk)

	_, err = resolvePrimaryKey(ctx, sess, "tags", "")
	assert.ErrorContains(t, err, "--primary-key")
}

func TestSeedCommand(t *testing.T) {
	dsn, c := newTestDB(t)
	file := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"name": "a", "age": 1}, {"name": "b"}]`), 0644))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"seed", "users", file, "--provider", "sqlite", "--database-url", dsn, "--yes", "--no-color"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, 2, countRows(t, c))
}

func TestInspectTables(t *testing.T) {
	_, c := newTestDB(t)
	_, err := c.DB().Exec(`INSERT INTO users (id, name) VALUES (3, 'x')`)
	require.NoError(t, err)
	_, err = c.DB().Exec(`CREATE TABLE notes (body TEXT)`)
	require.NoError(t, err)

	rows, err := inspectTables(context.Background(), c, []string{"users", "notes"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"users", "id, name, age", "id", "3"},
		{"notes", "body", "-", "-"},
	}, rows)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "prisma-bulk version")

	cmd = NewRootCommand()
	cmd.SetArgs([]string{"version", "--require", ">= 99.0"})
	assert.ErrorContains(t, cmd.Execute(), "does not satisfy")
}
