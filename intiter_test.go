package ewah

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterators(t *testing.T) {
	forWidths(t, testIterators[uint64], testIterators[uint32])
}

func testIterators[W Word](t *testing.T) {
	for _, f := range fixtures(5) {
		t.Run(f.name, func(t *testing.T) {
			b := fromPositions[W](f.positions)

			var forward []int
			for it := b.Iterator(); it.HasNext(); {
				forward = append(forward, it.Next())
			}
			assert.Equal(t, f.positions, forward)

			var reverse []int
			for it := b.ReverseIterator(); it.HasNext(); {
				reverse = append(reverse, it.Next())
			}
			want := slices.Clone(f.positions)
			slices.Reverse(want)
			assert.Equal(t, want, reverse)

			assert.Equal(t, f.positions, nilIfEmpty(slices.Collect(b.All())))
			assert.Equal(t, want, nilIfEmpty(slices.Collect(b.Backward())))

			set := make(map[int]bool, len(f.positions))
			for _, p := range f.positions {
				set[p] = true
			}
			clearCount := 0
			for it := b.ClearIterator(); it.HasNext(); {
				p := it.Next()
				require.False(t, set[p], "position %d is set", p)
				require.Less(t, p, b.SizeInBits())
				clearCount++
			}
			assert.Equal(t, b.SizeInBits()-len(f.positions), clearCount)
		})
	}
}

func TestIterator_OnesPaddedBeyondLastWord(t *testing.T) {
	b := New()
	b.SetSizeInBits(130, true)

	assert.Equal(t, 130, len(b.ToSlice()))
	assert.Equal(t, 129, b.ReverseIterator().Next())
	assert.False(t, b.ClearIterator().HasNext())
}

func TestIterator_EarlyStop(t *testing.T) {
	b := BitmapOf(1, 5, 9, 200, 300)

	var got []int
	for p := range b.All() {
		if p > 100 {
			break
		}
		got = append(got, p)
	}
	assert.Equal(t, []int{1, 5, 9}, got)

	got = got[:0]
	for p := range b.Backward() {
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{300, 200}, got)

	calls := 0
	b.ForEach(func(int) bool {
		calls++
		return calls < 3
	})
	assert.Equal(t, 3, calls)
}

func TestClearIterator(t *testing.T) {
	b := BitmapOf(0, 1, 3, 6)
	b.SetSizeInBits(9, false)

	var got []int
	for it := b.ClearIterator(); it.HasNext(); {
		got = append(got, it.Next())
	}
	assert.Equal(t, []int{2, 4, 5, 7, 8}, got)
}

func TestToArray(t *testing.T) {
	b := BitmapOf(3, 64, 1<<20)
	assert.Equal(t, []uint32{3, 64, 1 << 20}, b.ToArray())
	assert.Empty(t, New().ToArray())
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		b    *Bitmap64
		want string
	}{
		{"empty", New(), "{}"},
		{"single", BitmapOf(7), "{7}"},
		{"several", BitmapOf(1, 2, 3), "{1,2,3}"},
		{"spread", BitmapOf(0, 64, 100000), "{0,64,100000}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.String())
		})
	}
}
