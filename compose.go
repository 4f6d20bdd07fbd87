package ewah

// Compose returns the bitmap that keeps the k-th set bit of b exactly when
// bit k of other is set. The result has the size of b.
//
// For b = {1,3,4} and other = {1,2} the result is {3,4}.
func (b *Bitmap[W]) Compose(other *Bitmap[W]) *Bitmap[W] {
	out := b.newResult(other)
	b.ComposeTo(other, Sink[W](out))
	return out
}

// ComposeTo writes the composition of b and other into sink.
func (b *Bitmap[W]) ComposeTo(other *Bitmap[W], sink Sink[W]) {
	e := newEmitter(sink)
	w := &spanWriter[W]{e: e}
	selector := other.ChunkIterator()

	for it := b.ChunkIterator(); it.HasNext() && !e.stopped; {
		n := it.NextLength()
		if !it.NextBit() {
			w.write(false, n)
			it.Move(n)
			continue
		}
		it.Move(n)
		for n > 0 && !e.stopped {
			if !selector.HasNext() {
				w.write(false, n)
				break
			}
			k := min(n, selector.NextLength())
			w.write(selector.NextBit(), k)
			selector.Move(k)
			n -= k
		}
	}
	if !e.stopped {
		w.write(false, b.sizeInBits-w.total)
		w.finish()
	}
}
