package ewah

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ToRoaring returns a roaring bitmap holding the set positions of b.
// Runs of set bits are added as ranges.
func (b *Bitmap[W]) ToRoaring() *roaring.Bitmap {
	rb := roaring.New()
	b.forEachOneSpan(func(start, n int) {
		rb.AddRange(uint64(start), uint64(start+n))
	})
	return rb
}

// FromRoaring returns a 64-bit word bitmap holding the values of rb. Its size
// in bits is rb.Maximum()+1.
func FromRoaring(rb *roaring.Bitmap, opts ...Option) (*Bitmap64, error) {
	return FromRoaringOf[uint64](rb, opts...)
}

// FromRoaringOf is FromRoaring for any word type. It fails with
// ErrInvalidArgument when a value is above MaxPosition.
func FromRoaringOf[W Word](rb *roaring.Bitmap, opts ...Option) (*Bitmap[W], error) {
	b := NewBitmap[W](opts...)
	if rb.IsEmpty() {
		return b, nil
	}
	if limit := MaxPosition[W](); int64(rb.Maximum()) > int64(limit) {
		return nil, fmt.Errorf("%w: value %d above maximum position %d", ErrInvalidArgument, rb.Maximum(), limit)
	}
	it := rb.Iterator()
	for it.HasNext() {
		b.Set(int(it.Next()))
	}
	return b, nil
}

// forEachOneSpan calls fn with the start and length of every maximal run of
// set bits, in ascending order.
func (b *Bitmap[W]) forEachOneSpan(fn func(start, n int)) {
	pos := 0
	for it := b.ChunkIterator(); it.HasNext(); {
		n := it.NextLength()
		if it.NextBit() {
			fn(pos, n)
		}
		pos += n
		it.Move(n)
	}
}
