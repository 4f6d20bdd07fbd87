package ewah

import "github.com/hupe1980/ewah/internal/rlw"

// rlwIterator walks the buffer as (control word, literal words) groups.
// Mutating the bitmap during iteration invalidates the iterator.
type rlwIterator[W Word] struct {
	buf []W
	pos int
}

func newRLWIterator[W Word](b *Bitmap[W]) rlwIterator[W] {
	return rlwIterator[W]{buf: b.words()}
}

func (it *rlwIterator[W]) hasNext() bool {
	return it.pos < len(it.buf)
}

func (it *rlwIterator[W]) next() (W, []W) {
	cw := it.buf[it.pos]
	start := it.pos + 1
	end := min(start+rlw.LiteralWords(cw), len(it.buf))
	it.pos = end
	return cw, it.buf[start:end]
}

// reverseRLWIterator walks the same groups from the last to the first.
// The group positions are collected once on construction.
type reverseRLWIterator[W Word] struct {
	buf       []W
	positions []int
	idx       int
}

func newReverseRLWIterator[W Word](b *Bitmap[W]) *reverseRLWIterator[W] {
	it := &reverseRLWIterator[W]{buf: b.words()}
	for pos := 0; pos < len(it.buf); pos += 1 + rlw.LiteralWords(it.buf[pos]) {
		it.positions = append(it.positions, pos)
	}
	it.idx = len(it.positions)
	return it
}

func (it *reverseRLWIterator[W]) hasPrevious() bool {
	return it.idx > 0
}

func (it *reverseRLWIterator[W]) previous() (W, []W) {
	it.idx--
	pos := it.positions[it.idx]
	cw := it.buf[pos]
	end := min(pos+1+rlw.LiteralWords(cw), len(it.buf))
	return cw, it.buf[pos+1 : end]
}
