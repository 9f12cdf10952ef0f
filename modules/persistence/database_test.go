package persistence

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func openTemp(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), Filename))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore(t *testing.T) {
	for _, cached := range []bool{false, true} {
		db := openTemp(t)
		groups := NewStore[Group](db, GroupsBucket, cached)

		_, found := groups.Get("election")
		assert.False(t, found)
		list, err := groups.List()
		require.NoError(t, err)
		assert.Empty(t, list)

		created := time.Date(2016, 11, 8, 12, 0, 0, 0, time.UTC)
		require.NoError(t, groups.Put(Group{Name: "election", Camps: [][]string{{"maga"}, {"imwithher", "strongertogether"}}, Created: created}))
		require.NoError(t, groups.Put(Group{Name: "brexit", Camps: [][]string{{"leave"}, {"remain"}}}))
		assert.ErrorIs(t, groups.Put(Group{}), ErrEmptyID)

		g, found := groups.Get("election")
		require.True(t, found)
		assert.Equal(t, "strongertogether", g.Camps[1][1])
		assert.True(t, created.Equal(g.Created))

		// a fresh store on the same database sees the data
		again := NewStore[Group](db, GroupsBucket, false)
		list, err = again.List()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "brexit", list[0].Name)

		require.NoError(t, groups.Delete("brexit"))
		assert.ErrorIs(t, groups.Delete("brexit"), ErrNotFound)
		_, found = groups.Get("brexit")
		assert.False(t, found)
	}
}

func TestDumpRestore(t *testing.T) {
	db := openTemp(t)
	groups := NewStore[Group](db, GroupsBucket, false)
	runs := NewStore[Run](db, RunsBucket, false)
	require.NoError(t, groups.Put(Group{Name: "election", Camps: [][]string{{"a"}, {"b"}}}))
	run := NewRun("propagate")
	run.Candidates = []int{3, 4}
	run.Options.P0 = 1e-6
	require.NoError(t, runs.Put(run))

	var buf bytes.Buffer
	records, err := Dump(db, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, records)

	other := openTemp(t)
	records, err = Restore(other, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, records)

	restored, found := NewStore[Run](other, RunsBucket, false).Get(run.ID())
	require.True(t, found)
	assert.Equal(t, []int{3, 4}, restored.Candidates)
	assert.Equal(t, 1e-6, restored.Options.P0)
	assert.Equal(t, "propagate", restored.Command)

	g, found := NewStore[Group](other, GroupsBucket, false).Get("election")
	require.True(t, found)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, g.Camps)

	var empty bytes.Buffer
	records, err = Dump(openTemp(t), &empty)
	require.NoError(t, err)
	assert.Equal(t, 0, records)
	_, err = Restore(other, &empty)
	assert.NoError(t, err)
}
