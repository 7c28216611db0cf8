package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutGet(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("snapshot bytes")
	require.NoError(t, store.Put(ctx, "snapshots/emp/a.snap", payload))

	got, err := store.Get(ctx, "snapshots/emp/a.snap")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLocalStorage_GetMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_Exists(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "x", []byte("1")))
	ok, err = store.Exists(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStorage_DeleteIdempotent(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "x", []byte("1")))
	require.NoError(t, store.Delete(ctx, "x"))

	ok, err := store.Exists(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent object is not an error, matching S3.
	assert.NoError(t, store.Delete(ctx, "x"))
}

func TestLocalStorage_ListObjects(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "snapshots/emp/a.snap", []byte("1")))
	require.NoError(t, store.Put(ctx, "snapshots/emp/b.snap", []byte("2")))
	require.NoError(t, store.Put(ctx, "snapshots/dept/c.snap", []byte("3")))

	objects, err := store.ListObjects(ctx, "snapshots/emp")
	require.NoError(t, err)
	assert.Len(t, objects, 2)

	objects, err = store.ListObjects(ctx, "snapshots")
	require.NoError(t, err)
	assert.Len(t, objects, 3)

	objects, err = store.ListObjects(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Put(ctx, "x", []byte("1")))
	_, err = store.Get(ctx, "x")
	assert.Error(t, err)
}
