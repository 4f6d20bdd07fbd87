package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Basic(t *testing.T) {
	w := New[uint64](100)
	require.Equal(t, 104, w.Cap())

	w.Reset(100)
	assert.Equal(t, 100, w.Len())
	assert.Equal(t, 0, w.ActiveBlocks())

	w.Or(3, 0b101)
	w.Or(3, 0b010)
	w.Xor(50, 0xff)
	w.Xor(50, 0x0f)

	assert.Equal(t, uint64(0b111), w.Words()[3])
	assert.Equal(t, uint64(0xf0), w.Words()[50])
	assert.Equal(t, 2, w.ActiveBlocks())

	w.Clear()
	assert.Equal(t, 0, w.ActiveBlocks())
	for i, v := range w.Words() {
		assert.Zero(t, v, "word %d", i)
	}
}

func TestWindow_ZeroWritesDoNotActivate(t *testing.T) {
	w := New[uint32](64)
	w.Reset(64)
	w.Or(10, 0)
	w.Xor(20, 0)
	assert.Equal(t, 0, w.ActiveBlocks())
}

func TestWindow_FillAndFlip(t *testing.T) {
	w := New[uint32](32)
	w.Reset(32)

	w.Fill(6, 4)
	for i := 6; i < 10; i++ {
		assert.Equal(t, ^uint32(0), w.Words()[i])
	}
	assert.Equal(t, 2, w.ActiveBlocks(), "fill spans blocks 0 and 1")

	w.Flip(8, 4)
	assert.Equal(t, ^uint32(0), w.Words()[7])
	assert.Zero(t, w.Words()[8])
	assert.Zero(t, w.Words()[9])
	assert.Equal(t, ^uint32(0), w.Words()[10])
	assert.Equal(t, ^uint32(0), w.Words()[11])
}

func TestWindow_Spans(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		writes  []int
		expects []struct {
			n     int
			dense bool
		}
	}{
		{
			name:   "untouched",
			length: 20,
			expects: []struct {
				n     int
				dense bool
			}{{20, false}},
		},
		{
			name:   "middle block",
			length: 30,
			writes: []int{9},
			expects: []struct {
				n     int
				dense bool
			}{{8, false}, {8, true}, {14, false}},
		},
		{
			name:   "partial last block",
			length: 19,
			writes: []int{0, 18},
			expects: []struct {
				n     int
				dense bool
			}{{8, true}, {8, false}, {3, true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New[uint64](64)
			w.Reset(tt.length)
			for _, i := range tt.writes {
				w.Or(i, 1)
			}

			var got []struct {
				n     int
				dense bool
			}
			total := 0
			w.Spans(func(words []uint64, dense bool) bool {
				got = append(got, struct {
					n     int
					dense bool
				}{len(words), dense})
				total += len(words)
				return true
			})
			assert.Equal(t, tt.expects, got)
			assert.Equal(t, tt.length, total)
		})
	}
}

func TestWindow_SpansStop(t *testing.T) {
	w := New[uint64](64)
	w.Reset(64)
	w.Or(9, 1)

	calls := 0
	w.Spans(func([]uint64, bool) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestWindow_ResetPanicsPastCapacity(t *testing.T) {
	w := New[uint64](8)
	assert.Panics(t, func() { w.Reset(9) })
}

func TestPool(t *testing.T) {
	p := NewPool[uint64](16)

	w := p.Get()
	w.Reset(16)
	w.Fill(0, 16)
	p.Put(w)

	w2 := p.Get()
	w2.Reset(16)
	for _, v := range w2.Words() {
		assert.Zero(t, v)
	}
	p.Put(w2)

	// Windows from New are not pooled.
	p.Put(New[uint64](16))
	p.Put(nil)
}
