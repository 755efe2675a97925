package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Add(Record{
		Dir:         "/tmp/shots",
		OldName:     "shot1.png",
		NewName:     "code_editor_20240101_093000.png",
		Category:    "code_editor",
		Subcategory: "python_script",
		Outcome:     "renamed",
	}))
	require.NoError(t, store.Add(Record{
		Dir:     "/tmp/shots",
		OldName: "shot2.png",
		Outcome: "failed",
		Reason:  "backend unreachable: connection refused",
	}))

	records, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "shot2.png", records[0].OldName)
	assert.Equal(t, "failed", records[0].Outcome)
	assert.Equal(t, "backend unreachable: connection refused", records[0].Reason)
	assert.False(t, records[0].CreatedAt.IsZero())

	assert.Equal(t, "shot1.png", records[1].OldName)
	assert.Equal(t, "code_editor_20240101_093000.png", records[1].NewName)
	assert.Equal(t, "code_editor", records[1].Category)
	assert.Equal(t, "python_script", records[1].Subcategory)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(Record{Dir: "/tmp", OldName: "x.png", Outcome: "skipped"}))
	}

	records, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	records, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Add(Record{Dir: "/tmp", OldName: "a.png", Outcome: "renamed"}))
}
