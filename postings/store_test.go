package postings

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/blobstore"
	"github.com/hupe1980/ewah/codec"
	"github.com/hupe1980/ewah/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore[W ewah.Word](t *testing.T, blobs blobstore.BlobStore, opts ...Option) *Store[W] {
	t.Helper()
	s, err := Open[W](context.Background(), blobs, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)

	tests := []struct {
		name        string
		compression codec.Compression
		blobs       func(t *testing.T) blobstore.BlobStore
	}{
		{"memory/lz4", codec.CompressionLZ4, func(*testing.T) blobstore.BlobStore { return blobstore.NewMemoryStore() }},
		{"memory/none", codec.CompressionNone, func(*testing.T) blobstore.BlobStore { return blobstore.NewMemoryStore() }},
		{"local/zstd", codec.CompressionZstd, func(t *testing.T) blobstore.BlobStore {
			return blobstore.NewLocalStore(t.TempDir(), blobstore.WithSync(false))
		}},
		{"caching/lz4", codec.CompressionLZ4, func(*testing.T) blobstore.BlobStore {
			return blobstore.NewCachingStore(blobstore.NewMemoryStore(), 1<<20)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore[uint64](t, tt.blobs(t), WithCompression(tt.compression, 0))

			positions := rng.MixedPositions(1 << 16)
			b := ewah.BitmapOf(positions...)
			require.NoError(t, s.Save(ctx, "lang:go", b))

			got, err := s.Load(ctx, "lang:go")
			require.NoError(t, err)
			assert.True(t, b.Equals(got))
			assert.Equal(t, b.SizeInBits(), got.SizeInBits())

			entries := s.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, "lang:go", entries[0].Name)
			assert.Equal(t, len(positions), entries[0].Cardinality)
			assert.Positive(t, entries[0].Bytes)
		})
	}
}

func TestStore_Words32(t *testing.T) {
	ctx := context.Background()
	s := openStore[uint32](t, blobstore.NewMemoryStore())

	b := ewah.BitmapOf32(1, 2, 3, 1000)
	require.NoError(t, s.Save(ctx, "a", b))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 1000}, got.ToSlice())
}

func TestStore_LoadMissing(t *testing.T) {
	s := openStore[uint64](t, blobstore.NewMemoryStore())

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_InvalidNames(t *testing.T) {
	ctx := context.Background()
	s := openStore[uint64](t, blobstore.NewMemoryStore())

	for _, name := range []string{"", ".", "..", "a/b", "tab\tname", string([]byte{0xff}), string(make([]byte, 513))} {
		assert.ErrorIs(t, s.Save(ctx, name, ewah.BitmapOf(1)), ErrInvalidName, "%q", name)
		_, err := s.Load(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.ErrorIs(t, s.Delete(ctx, name), ErrInvalidName)
	}
	assert.NoError(t, ValidateName("topic:databases"))
}

func TestStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	s := openStore[uint64](t, blobs, WithPrefix("idx"))

	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, s.Save(ctx, name, ewah.BitmapOf(1)))
	}
	require.NoError(t, s.Delete(ctx, "b"))
	require.NoError(t, s.Delete(ctx, "b"))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)

	keys, err := blobs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"idx/bitmaps/a", "idx/bitmaps/c"}, keys)

	assert.Len(t, s.Entries(), 2)
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)
	lists := rng.PostingLists(20000, 40, 1.1)

	s := openStore[uint64](t, blobstore.NewMemoryStore(), WithConcurrency(3))

	batch := make(map[string]*ewah.Bitmap64, len(lists))
	oracles := make([]*roaring.Bitmap, len(lists))
	names := make([]string, len(lists))
	for i, l := range lists {
		names[i] = "t" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		batch[names[i]] = ewah.BitmapOf(l...)
		rb := roaring.New()
		for _, p := range l {
			rb.Add(uint32(p))
		}
		oracles[i] = rb
	}
	require.NoError(t, s.SaveMany(ctx, batch))

	t.Run("Intersect", func(t *testing.T) {
		got, err := s.Intersect(ctx, names[0], names[1], names[2])
		require.NoError(t, err)
		assertSame(t, roaring.And(roaring.And(oracles[0], oracles[1]), oracles[2]), got)
	})

	t.Run("Union", func(t *testing.T) {
		got, err := s.Union(ctx, names[3], names[4])
		require.NoError(t, err)
		assertSame(t, roaring.Or(oracles[3], oracles[4]), got)
	})

	t.Run("UnionParallel", func(t *testing.T) {
		got, err := s.Union(ctx, names...)
		require.NoError(t, err)
		assertSame(t, roaring.FastOr(oracles...), got)
	})

	t.Run("Threshold", func(t *testing.T) {
		got, err := s.Threshold(ctx, 2, names[0], names[1], names[2])
		require.NoError(t, err)

		want := roaring.Or(
			roaring.Or(roaring.And(oracles[0], oracles[1]), roaring.And(oracles[0], oracles[2])),
			roaring.And(oracles[1], oracles[2]),
		)
		assertSame(t, want, got)
	})

	t.Run("Difference", func(t *testing.T) {
		got, err := s.Difference(ctx, names[0], names[1], names[2])
		require.NoError(t, err)
		assertSame(t, roaring.AndNot(oracles[0], roaring.Or(oracles[1], oracles[2])), got)

		only, err := s.Difference(ctx, names[5])
		require.NoError(t, err)
		assertSame(t, oracles[5], only)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := s.Intersect(ctx)
		assert.ErrorIs(t, err, ErrNoOperands)

		_, err = s.Union(ctx, names[0], "missing")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

func assertSame(t *testing.T, want *roaring.Bitmap, got *ewah.Bitmap64) {
	t.Helper()
	assert.Equal(t, int(want.GetCardinality()), got.Cardinality())

	var wantInts, gotInts []int
	for _, v := range want.ToArray() {
		wantInts = append(wantInts, int(v))
	}
	for p := range got.All() {
		gotInts = append(gotInts, p)
	}
	assert.Equal(t, wantInts, gotInts)
}

// failingStore fails Put for names in fail.
type failingStore struct {
	blobstore.BlobStore
	fail map[string]bool
}

func (f *failingStore) Put(ctx context.Context, name string, data []byte) error {
	if f.fail[name] {
		return errors.New("disk full")
	}
	return f.BlobStore.Put(ctx, name, data)
}

func TestStore_SaveManyReportsFailures(t *testing.T) {
	ctx := context.Background()
	blobs := &failingStore{
		BlobStore: blobstore.NewMemoryStore(),
		fail:      map[string]bool{"bitmaps/b": true},
	}
	metrics := &BasicMetricsCollector{}
	s := openStore[uint64](t, blobs, WithMetrics(metrics))

	err := s.SaveMany(ctx, map[string]*ewah.Bitmap64{
		"a": ewah.BitmapOf(1),
		"b": ewah.BitmapOf(2),
		"c": ewah.BitmapOf(3),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)

	st := metrics.GetStats()
	assert.Equal(t, int64(3), st.SaveCount)
	assert.Equal(t, int64(1), st.SaveErrors)
	assert.Equal(t, int64(1), st.BulkCount)
	assert.Equal(t, int64(1), st.BulkFailed)
}

func TestStore_CommitAndReopen(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewLocalStore(t.TempDir(), blobstore.WithSync(false))

	s := openStore[uint64](t, blobs)
	_, err := s.Catalog(ctx)
	assert.ErrorIs(t, err, ErrNoCatalog)

	require.NoError(t, s.Save(ctx, "b", ewah.BitmapOf(1, 2, 3)))
	require.NoError(t, s.Save(ctx, "a", ewah.BitmapOf(100)))
	name, err := s.Commit(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^catalog-\d{20}\.json$`, name)

	cat, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, CatalogVersion, cat.Version)
	assert.Equal(t, 64, cat.WordWidth)
	assert.Equal(t, []string{"a", "b"}, cat.Names())

	e, ok := cat.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 3, e.Cardinality)
	assert.Greater(t, e.Bytes, codec.HeaderSize)
	_, ok = cat.Lookup("zzz")
	assert.False(t, ok)

	reopened := openStore[uint64](t, blobs, WithCodec(codec.JSON{}))
	assert.Equal(t, cat.Entries, reopened.Entries())

	_, err = Open[uint32](ctx, blobs)
	assert.ErrorIs(t, err, codec.ErrWordWidthMismatch)
}

func TestStore_PruneCatalogs(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	s := openStore[uint64](t, blobs)

	var names []string
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Save(ctx, "x", ewah.BitmapOf(i)))
		name, err := s.Commit(ctx)
		require.NoError(t, err)
		names = append(names, name)
	}

	deleted, err := s.PruneCatalogs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	keys, err := blobs.List(ctx, "catalog-")
	require.NoError(t, err)
	assert.Equal(t, names[2:], keys)

	cat, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, cat.Names())
}

func TestStore_PruneCatalogsKeepsCurrentWithWhitespace(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	s := openStore[uint64](t, blobs, WithPrefix("idx"))

	var names []string
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save(ctx, "x", ewah.BitmapOf(i)))
		name, err := s.Commit(ctx)
		require.NoError(t, err)
		names = append(names, name)
	}
	// CURRENT edited by hand points at the oldest catalog.
	require.NoError(t, blobs.Put(ctx, "idx/"+CurrentName, []byte(names[0]+"\n")))

	deleted, err := s.PruneCatalogs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	keys, err := blobs.List(ctx, "idx/catalog-")
	require.NoError(t, err)
	assert.Equal(t, []string{"idx/" + names[0]}, keys)

	cat, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, cat.Names())
}

func TestStore_MaxRawSize(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, DefaultMaxRawSize, applyOptions(nil).Envelope.MaxRawSize)
	assert.Zero(t, applyOptions([]Option{WithMaxRawSize(0)}).Envelope.MaxRawSize)

	blobs := blobstore.NewMemoryStore()
	s := openStore[uint64](t, blobs)

	// A valid envelope whose header claims more than the default bound.
	raw, err := ewah.BitmapOf(1, 2, 3).MarshalBinary()
	require.NoError(t, err)
	data, err := codec.Encode(raw, 64, codec.Options{})
	require.NoError(t, err)
	data[6] = byte(codec.CompressionZstd)
	binary.LittleEndian.PutUint32(data[12:], DefaultMaxRawSize+1)
	require.NoError(t, blobs.Put(ctx, s.bitmapKey("huge"), data))

	_, err = s.Load(ctx, "huge")
	assert.ErrorIs(t, err, codec.ErrTooLarge)

	limited := openStore[uint64](t, blobstore.NewMemoryStore(), WithMaxRawSize(64))
	dense := ewah.New()
	for i := 0; i < 1<<14; i += 3 {
		dense.Set(i)
	}
	require.NoError(t, limited.Save(ctx, "dense", dense))
	_, err = limited.Load(ctx, "dense")
	assert.ErrorIs(t, err, codec.ErrTooLarge)
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := openStore[uint64](t, blobstore.NewMemoryStore())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Save(ctx, "a", ewah.BitmapOf(1)), ErrClosed)
	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Commit(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Intersect(ctx, "a")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_CancelledContext(t *testing.T) {
	s := openStore[uint64](t, blobstore.NewMemoryStore(), WithIORate(1<<20))
	require.NoError(t, s.Save(context.Background(), "a", ewah.BitmapOf(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadMany(ctx, []string{"a", "a"})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingBlobs struct {
	blobstore.BlobStore
	opens atomic.Int64
}

func (c *countingBlobs) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	c.opens.Add(1)
	return c.BlobStore.Open(ctx, name)
}

func TestStore_CachedLoads(t *testing.T) {
	ctx := context.Background()
	inner := &countingBlobs{BlobStore: blobstore.NewMemoryStore()}
	s := openStore[uint64](t, blobstore.NewCachingStore(inner, 1<<20))
	opensAtOpen := inner.opens.Load()

	require.NoError(t, s.Save(ctx, "a", ewah.BitmapOf(1, 5)))
	for i := 0; i < 3; i++ {
		_, err := s.Load(ctx, "a")
		require.NoError(t, err)
	}
	assert.Equal(t, opensAtOpen+1, inner.opens.Load())
}

func TestStore_Logging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := ewah.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := openStore[uint64](t, blobstore.NewMemoryStore(), WithLogger(logger))

	require.NoError(t, s.Save(ctx, "a", ewah.BitmapOf(1)))
	_, err := s.Load(ctx, "missing")
	require.Error(t, err)
	_, err = s.Commit(ctx)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"save completed"`)
	assert.Contains(t, out, `"msg":"load failed"`)
	assert.Contains(t, out, `"msg":"catalog committed"`)
}

func TestBasicMetricsCollector(t *testing.T) {
	ctx := context.Background()
	m := &BasicMetricsCollector{}
	s := openStore[uint64](t, blobstore.NewMemoryStore(), WithMetrics(m))

	require.NoError(t, s.Save(ctx, "a", ewah.BitmapOf(1)))
	require.NoError(t, s.Save(ctx, "b", ewah.BitmapOf(1, 2)))
	_, err := s.Intersect(ctx, "a", "b")
	require.NoError(t, err)
	_, err = s.Commit(ctx)
	require.NoError(t, err)

	st := m.GetStats()
	assert.Equal(t, int64(2), st.SaveCount)
	assert.Positive(t, st.SaveBytes)
	assert.Equal(t, int64(2), st.LoadCount)
	assert.Equal(t, int64(1), st.QueryCount)
	assert.Equal(t, int64(2), st.QueryOperands)
	assert.Equal(t, int64(1), st.CommitCount)
	assert.Zero(t, st.CommitErrors)
}
