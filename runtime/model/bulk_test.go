package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
	"github.com/satishbabariya/prisma-bulk/runtime/client"
	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

func userIDs(t *testing.T, c *client.PrismaClient) []int64 {
	t.Helper()
	rows, err := c.DB().Query(`SELECT id FROM users ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestBulkCommitThroughSession(t *testing.T) {
	c := newClient(t)
	s := newSession(t, c)
	ctx := context.Background()
	users := Define("users", WithValidators(Required("name")))
	posts := Define("posts", WithPrimaryKey("pid"))

	_, err := c.DB().Exec(`INSERT INTO users (id, name) VALUES (10, 'seed')`)
	require.NoError(t, err)
	existing, err := users.Find(ctx, s, 10)
	require.NoError(t, err)

	var created []map[string]types.Value
	users.Hooks().OnAfterCreate(func(hc *HookContext) error {
		created = append(created, hc.Changed)
		return nil
	})

	saver, err := s.NewSaver(bulk.WithMaxRowsToInsert(2))
	require.NoError(t, err)

	var fresh []*Record
	for i := 0; i < 5; i++ {
		r := users.New(s, "name", fmt.Sprintf("u%d", i), "email", nil)
		require.True(t, saver.Enqueue(r))
		fresh = append(fresh, r)
	}
	post := posts.New(s, "title", "hello")
	require.True(t, saver.Enqueue(post))
	assert.False(t, saver.Enqueue(users.New(s, "email", "no name")))

	existing.Set("name", "renamed")
	require.True(t, saver.Enqueue(existing))

	require.NoError(t, saver.Commit(ctx))

	report := saver.LastReport()
	assert.True(t, report.Succeeded())
	assert.Equal(t, 6, report.RowsInserted)
	assert.Equal(t, 4, report.Chunks, "users in 3 chunks, posts in 1")
	assert.Equal(t, 1, report.Updates)
	assert.Equal(t, []string{"users", "posts"}, report.Tables)

	assert.Equal(t, []int64{10, 11, 12, 13, 14, 15}, userIDs(t, c))
	for i, r := range fresh {
		id, _ := r.Key().AsInt()
		assert.Equal(t, int64(11+i), id)
		assert.False(t, r.IsNew())
		assert.False(t, r.IsDirty())
	}
	pid, _ := post.Key().AsInt()
	assert.Equal(t, int64(1), pid)

	require.Len(t, created, 5)
	assert.Equal(t, types.Null(), created[0]["id"])
	assert.Contains(t, created[0], "name")

	again, err := users.Find(ctx, s, 10)
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Get("name").String())
}

func TestBulkCommitRollsBackOnInsertFailure(t *testing.T) {
	c := newClient(t)
	s := newSession(t, c)
	ctx := context.Background()
	users := Define("users")

	saver, err := s.NewSaver()
	require.NoError(t, err)

	good := users.New(s, "name", "a", "nickname", "x")
	require.True(t, saver.Enqueue(good))

	err = saver.Commit(ctx)
	require.Error(t, err)
	assert.Equal(t, bulk.StageRolledBack, saver.LastReport().Stage)
	assert.False(t, s.InTransaction())

	assert.Empty(t, userIDs(t, c))
	assert.True(t, good.IsNew())
	assert.True(t, good.Key().IsNull())
}

func TestBulkCommitInsideOuterTransaction(t *testing.T) {
	c := newClient(t)
	s := newSession(t, c)
	ctx := context.Background()
	users := Define("users")

	require.NoError(t, s.Begin(ctx))

	saver, err := s.NewSaver()
	require.NoError(t, err)
	require.True(t, saver.Enqueue(users.New(s, "name", "a")))
	require.NoError(t, saver.Commit(ctx))
	assert.True(t, saver.LastReport().OwnTx)
	assert.Equal(t, 1, s.Depth(), "savepoint released, outer transaction still open")

	require.NoError(t, s.Rollback(ctx))
	assert.Empty(t, userIDs(t, c))
}

func TestFailedSavepointReleaseKeepsOuterTransaction(t *testing.T) {
	var refuse atomic.Bool
	c := newClient(t, client.WithMiddleware(func(ctx context.Context, event *client.QueryEvent, next func() error) error {
		if refuse.Load() && strings.HasPrefix(event.Query, "RELEASE") {
			return errors.New("release refused")
		}
		return next()
	}))
	s := newSession(t, c)
	ctx := context.Background()
	users := Define("users")

	require.NoError(t, s.Begin(ctx))
	_, err := s.ExecContext(ctx, `INSERT INTO users (id, name) VALUES (1, 'outer')`)
	require.NoError(t, err)

	saver, err := s.NewSaver()
	require.NoError(t, err)
	rec := users.New(s, "name", "inner")
	require.True(t, saver.Enqueue(rec))

	refuse.Store(true)
	err = saver.Commit(ctx)
	assert.ErrorContains(t, err, "release refused")
	assert.True(t, s.InTransaction(), "outer transaction must survive")
	assert.Equal(t, 1, s.Depth())

	refuse.Store(false)
	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, []int64{1}, userIDs(t, c))
}

func TestConcurrentBulkWriters(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	users := Define("users")

	const writers, perWriter = 4, 25

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < writers; w++ {
		w := w
		g.Go(func() error {
			s, err := c.Session(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			saver, err := s.NewSaver()
			if err != nil {
				return err
			}
			for i := 0; i < perWriter; i++ {
				saver.Enqueue(users.New(s, "name", fmt.Sprintf("w%d-%d", w, i)))
			}
			return saver.Commit(ctx)
		})
	}
	require.NoError(t, g.Wait())

	ids := userIDs(t, c)
	require.Len(t, ids, writers*perWriter)
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}
}
