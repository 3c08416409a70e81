package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	t.Helper()

	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  local,
	}
}

func TestBlobStore_PutGet(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "tables/current", []byte("hello")))

			got, err := store.Get(ctx, "tables/current")
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), got)

			// Overwrite replaces.
			require.NoError(t, store.Put(ctx, "tables/current", []byte("world")))
			got, err = store.Get(ctx, "tables/current")
			require.NoError(t, err)
			assert.Equal(t, []byte("world"), got)
		})
	}
}

func TestBlobStore_GetMissing(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "nope")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBlobStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "a", []byte("x")))
			require.NoError(t, store.Delete(ctx, "a"))

			_, err := store.Get(ctx, "a")
			require.ErrorIs(t, err, ErrNotFound)

			// Deleting a missing blob is not an error.
			require.NoError(t, store.Delete(ctx, "a"))
		})
	}
}

func TestBlobStore_List(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "tables/a", []byte("1")))
			require.NoError(t, store.Put(ctx, "tables/b", []byte("2")))
			require.NoError(t, store.Put(ctx, "other/c", []byte("3")))

			names, err := store.List(ctx, "tables/")
			require.NoError(t, err)
			assert.Equal(t, []string{"tables/a", "tables/b"}, names)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("immutable")
	require.NoError(t, store.Put(ctx, "a", data))
	data[0] = 'X'

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}
