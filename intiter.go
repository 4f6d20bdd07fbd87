package ewah

import (
	"iter"
	"math/bits"

	"github.com/hupe1980/ewah/internal/rlw"
)

// IntIterator yields the set positions of a bitmap in ascending order.
// Mutating the bitmap during iteration invalidates the iterator.
type IntIterator[W Word] struct {
	it     rlwIterator[W]
	size   int
	offset int

	runNext, runEnd int
	lits            []W
	litBase         int
	word            uint64
	wordBase        int

	next int
	has  bool
}

// Iterator returns an ascending iterator over the set positions of b.
func (b *Bitmap[W]) Iterator() *IntIterator[W] {
	it := &IntIterator[W]{it: newRLWIterator(b), size: b.sizeInBits}
	it.advance()
	return it
}

// HasNext reports whether another position is available.
func (it *IntIterator[W]) HasNext() bool {
	return it.has
}

// Next returns the next set position. It must only be called after HasNext
// returned true.
func (it *IntIterator[W]) Next() int {
	n := it.next
	it.advance()
	return n
}

func (it *IntIterator[W]) advance() {
	width := wordBits[W]()
	for {
		if it.runNext < it.runEnd {
			it.next = it.runNext
			it.runNext++
			it.has = it.next < it.size
			return
		}
		if it.word != 0 {
			t := bits.TrailingZeros64(it.word)
			it.word &= it.word - 1
			it.next = it.wordBase + t
			it.has = it.next < it.size
			return
		}
		if len(it.lits) > 0 {
			it.word = uint64(it.lits[0])
			it.wordBase = it.litBase
			it.litBase += width
			it.lits = it.lits[1:]
			continue
		}
		if !it.it.hasNext() {
			it.has = false
			return
		}
		cw, lits := it.it.next()
		run := int(rlw.RunningLength(cw)) * width
		if rlw.RunningBit(cw) && run > 0 {
			it.runNext, it.runEnd = it.offset, it.offset+run
		}
		it.offset += run
		it.lits = lits
		it.litBase = it.offset
		it.offset += len(lits) * width
	}
}

// ReverseIntIterator yields the set positions of a bitmap in descending order.
type ReverseIntIterator[W Word] struct {
	it     *reverseRLWIterator[W]
	size   int
	offset int

	runLo, runHi int
	lits         []W
	litEnd       int
	word         uint64
	wordBase     int

	next int
	has  bool
}

// ReverseIterator returns a descending iterator over the set positions of b.
func (b *Bitmap[W]) ReverseIterator() *ReverseIntIterator[W] {
	it := &ReverseIntIterator[W]{
		it:     newReverseRLWIterator(b),
		size:   b.sizeInBits,
		offset: b.encodedWords() * wordBits[W](),
	}
	it.advance()
	return it
}

// HasNext reports whether another position is available.
func (it *ReverseIntIterator[W]) HasNext() bool {
	return it.has
}

// Next returns the next set position in descending order.
func (it *ReverseIntIterator[W]) Next() int {
	n := it.next
	it.advance()
	return n
}

func (it *ReverseIntIterator[W]) advance() {
	width := wordBits[W]()
	for {
		if it.word != 0 {
			t := 63 - bits.LeadingZeros64(it.word)
			it.word &^= 1 << t
			if it.next = it.wordBase + t; it.next < it.size {
				it.has = true
				return
			}
			continue
		}
		if n := len(it.lits); n > 0 {
			it.litEnd -= width
			it.wordBase = it.litEnd
			it.word = uint64(it.lits[n-1])
			it.lits = it.lits[:n-1]
			continue
		}
		if it.runHi > it.runLo {
			it.runHi--
			it.next = it.runHi
			it.has = true
			return
		}
		if !it.it.hasPrevious() {
			it.has = false
			return
		}
		cw, lits := it.it.previous()
		it.lits = lits
		it.litEnd = it.offset
		runEnd := it.offset - len(lits)*width
		runStart := runEnd - int(rlw.RunningLength(cw))*width
		if rlw.RunningBit(cw) {
			it.runLo, it.runHi = runStart, min(runEnd, it.size)
		}
		it.offset = runStart
	}
}

// ClearIntIterator yields the unset positions below SizeInBits in ascending
// order.
type ClearIntIterator[W Word] struct {
	chunks   *ChunkIterator[W]
	pos      int
	cur, end int
}

// ClearIterator returns an ascending iterator over the unset positions of b.
func (b *Bitmap[W]) ClearIterator() *ClearIntIterator[W] {
	it := &ClearIntIterator[W]{chunks: b.ChunkIterator()}
	it.seek()
	return it
}

// HasNext reports whether another position is available.
func (it *ClearIntIterator[W]) HasNext() bool {
	return it.cur < it.end
}

// Next returns the next unset position.
func (it *ClearIntIterator[W]) Next() int {
	n := it.cur
	it.cur++
	if it.cur == it.end {
		it.seek()
	}
	return n
}

func (it *ClearIntIterator[W]) seek() {
	for it.chunks.HasNext() {
		n := it.chunks.NextLength()
		bit := it.chunks.NextBit()
		it.chunks.Move(n)
		start := it.pos
		it.pos += n
		if !bit {
			it.cur, it.end = start, it.pos
			return
		}
	}
}

// ForEach calls fn for every set position in ascending order until fn
// returns false.
func (b *Bitmap[W]) ForEach(fn func(int) bool) {
	for it := b.Iterator(); it.HasNext(); {
		if !fn(it.Next()) {
			return
		}
	}
}

// All returns the set positions in ascending order.
func (b *Bitmap[W]) All() iter.Seq[int] {
	return b.ForEach
}

// Backward returns the set positions in descending order.
func (b *Bitmap[W]) Backward() iter.Seq[int] {
	return func(yield func(int) bool) {
		for it := b.ReverseIterator(); it.HasNext(); {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToSlice returns the set positions in ascending order.
func (b *Bitmap[W]) ToSlice() []int {
	out := make([]int, 0, b.Cardinality())
	for it := b.Iterator(); it.HasNext(); {
		out = append(out, it.Next())
	}
	return out
}

// ToArray returns the set positions as uint32 values, the form used by
// roaring bitmaps.
func (b *Bitmap[W]) ToArray() []uint32 {
	out := make([]uint32, 0, b.Cardinality())
	for it := b.Iterator(); it.HasNext(); {
		out = append(out, uint32(it.Next()))
	}
	return out
}
