package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutGetRoundTrip(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte("hello board")
	hash, err := store.Put(ctx, data, ".jpg", false)
	require.NoError(t, err)
	assert.Equal(t, Hash(data), hash)

	got, err := store.Get(ctx, hash, ".jpg", false)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStorePutIsIdempotent(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	data := []byte("same content twice")

	h1, err := store.Put(ctx, data, ".png", false)
	require.NoError(t, err)
	h2, err := store.Put(ctx, data, ".png", false)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestLocalStoreThumbnailAndFullNamespacesAreDistinct(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	data := []byte("same bytes, different namespace")

	hash, err := store.Put(ctx, data, ".jpg", false)
	require.NoError(t, err)

	_, err = store.Get(ctx, hash, ".jpg", true)
	assert.ErrorIs(t, err, ErrNotFound, "a full-image blob must not be visible under the thumbnail namespace")
}

func TestLocalStoreGetMissingReturnsErrNotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Get(context.Background(), "deadbeef", ".jpg", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDeleteMissingReturnsErrNotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	err := store.Delete(context.Background(), "deadbeef", ".jpg", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreDeleteRemovesBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	data := []byte("to be deleted")

	hash, err := store.Put(ctx, data, ".jpg", false)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, hash, ".jpg", false))

	_, err = store.Get(ctx, hash, ".jpg", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShardUsesFirstTwoHexChars(t *testing.T) {
	assert.Equal(t, "ab", Shard("abcdef0123"))
	assert.Equal(t, "00", Shard(""), "a too-short hash falls back to shard 00")
}
