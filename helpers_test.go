package ewah

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ewah/internal/rlw"
	"github.com/hupe1980/ewah/testutil"
)

// fixture is a named set of ascending positions.
type fixture struct {
	name      string
	positions []int
}

func fixtures(seed int64) []fixture {
	rng := testutil.NewRNG(seed)
	ones := make([]int, 5000)
	for i := range ones {
		ones[i] = 100 + i
	}
	return []fixture{
		{"empty", nil},
		{"single", []int{77}},
		{"word edges", []int{0, 63, 64, 127, 128, 191}},
		{"sparse", rng.SparsePositions(200, 1<<22)},
		{"dense", rng.DensePositions(20000, 0.5)},
		{"runs", rng.RunPositions(200000, 700, 4000)},
		{"ones", ones},
		{"mixed", rng.MixedPositions(30000)},
	}
}

func fromPositions[W Word](positions []int) *Bitmap[W] {
	b := NewBitmap[W]()
	for _, p := range positions {
		b.Set(p)
	}
	return b
}

func oracle(positions []int) *roaring.Bitmap {
	rb := roaring.New()
	for _, p := range positions {
		rb.Add(uint32(p))
	}
	return rb
}

func toInts(rb *roaring.Bitmap) []int {
	out := make([]int, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// requireSame checks that b holds exactly the values of want and that its
// encoding is well formed.
func requireSame[W Word](t *testing.T, want *roaring.Bitmap, b *Bitmap[W]) {
	t.Helper()
	requireWellFormed(t, b)
	require.Equal(t, toInts(want), b.ToSlice())
	require.Equal(t, int(want.GetCardinality()), b.Cardinality())
}

// requireWellFormed checks the structural invariants of the word stream.
func requireWellFormed[W Word](t *testing.T, b *Bitmap[W]) {
	t.Helper()
	require.GreaterOrEqual(t, b.actualSizeInWords, 1)
	require.LessOrEqual(t, b.actualSizeInWords, len(b.buffer))

	last, pos, encoded := 0, 0, 0
	var lastWord W
	for pos < b.actualSizeInWords {
		last = pos
		cw := b.buffer[pos]
		run := int(rlw.RunningLength(cw))
		n := rlw.LiteralWords(cw)
		if n > 0 {
			lastWord = b.buffer[pos+n]
		} else if run > 0 && rlw.RunningBit(cw) {
			lastWord = allOnes[W]()
		} else if run > 0 {
			lastWord = 0
		}
		encoded += run + n
		pos += 1 + n
	}
	require.Equal(t, b.actualSizeInWords, pos, "literal counts overrun the buffer")
	require.Equal(t, last, b.rlwPos, "current control word is not the last one")
	require.Equal(t, wordsFor[W](b.sizeInBits), encoded, "encoded words do not match the size")
	if used := b.sizeInBits % wordBits[W](); used != 0 {
		require.Zero(t, lastWord&^lowMask[W](used), "bits past the size are set")
	}
}

// forWidths runs fn for both word widths.
func forWidths(t *testing.T, fn64 func(t *testing.T), fn32 func(t *testing.T)) {
	t.Run("64", fn64)
	t.Run("32", fn32)
}
