// Package blobstoretest provides a conformance suite for blobstore.BlobStore
// implementations.
package blobstoretest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/hupe1980/ewah/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the BlobStore contract against stores created by newStore.
// Every subtest gets a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) blobstore.BlobStore) {
	t.Helper()

	t.Run("PutOpen", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		data := []byte("compressed posting list")
		require.NoError(t, s.Put(ctx, "terms/apple", data))

		b, err := s.Open(ctx, "terms/apple")
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, int64(len(data)), b.Size())

		buf := make([]byte, 7)
		n, err := b.ReadAt(ctx, buf, 11)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		assert.Equal(t, "posting", string(buf))

		got, err := blobstore.ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("ReadPastEnd", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "short", []byte("abc")))

		b, err := s.Open(ctx, "short")
		require.NoError(t, err)
		defer b.Close()

		buf := make([]byte, 4)
		n, err := b.ReadAt(ctx, buf, 1)
		assert.Equal(t, 2, n)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, "bc", string(buf[:n]))
	})

	t.Run("Overwrite", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "x", []byte("first")))
		require.NoError(t, s.Put(ctx, "x", []byte("second")))

		got := readAll(t, s, "x")
		assert.Equal(t, "second", string(got))
	})

	t.Run("PutCopiesInput", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		data := []byte("abc")
		require.NoError(t, s.Put(ctx, "x", data))
		data[0] = 'z'

		assert.Equal(t, "abc", string(readAll(t, s, "x")))
	})

	t.Run("Empty", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "empty", nil))

		b, err := s.Open(ctx, "empty")
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, int64(0), b.Size())
	})

	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.Open(ctx, "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, blobstore.ErrNotFound), "got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "gone", []byte("x")))
		require.NoError(t, s.Delete(ctx, "gone"))

		_, err := s.Open(ctx, "gone")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)

		require.NoError(t, s.Delete(ctx, "gone"), "deleting a missing blob succeeds")
	})

	t.Run("List", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, name := range []string{"terms/b", "terms/a", "catalog/1", "terms/c/d"} {
			require.NoError(t, s.Put(ctx, name, []byte(name)))
		}

		names, err := s.List(ctx, "terms/")
		require.NoError(t, err)
		assert.Equal(t, []string{"terms/a", "terms/b", "terms/c/d"}, names)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"catalog/1", "terms/a", "terms/b", "terms/c/d"}, all)

		none, err := s.List(ctx, "nothing/")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func readAll(t *testing.T, s blobstore.BlobStore, name string) []byte {
	t.Helper()
	ctx := context.Background()

	b, err := s.Open(ctx, name)
	require.NoError(t, err)
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	require.NoError(t, err)
	return data
}
