package cache

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, ttl time.Duration) (*SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache", "responses.sqlite")
	store, err := OpenSQLiteStore(path, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestOpenSQLiteStore_CreatesDirectory(t *testing.T) {
	_, path := openTestSQLite(t, 0)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestSQLiteStore_PutThenGet(t *testing.T) {
	store, _ := openTestSQLite(t, 0)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("first")))
	require.NoError(t, store.Put(ctx, "k", []byte("second")))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", string(got))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.sqlite")
	ctx := context.Background()

	first, err := OpenSQLiteStore(path, 0)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "k", []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(path, 0)
	require.NoError(t, err)
	defer second.Close()

	got, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", string(got))
}

func TestSQLiteStore_Expiry(t *testing.T) {
	store, _ := openTestSQLite(t, time.Hour)
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Put(ctx, "k", []byte("v")))

	store.now = func() time.Time { return base.Add(30 * time.Minute) }
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLiteStore_Purge(t *testing.T) {
	store, _ := openTestSQLite(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Purge(ctx))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}
