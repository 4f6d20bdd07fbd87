package ewah

// Sink receives the uncompressed word stream produced by a merge,
// aggregation or copy. Every algorithm in this package writes through a Sink,
// so the same code can build a bitmap, count bits or detect non-emptiness.
//
// The write methods return true to ask the driving algorithm to stop early;
// once a write has returned true no further writes are made and
// SetSizeInBitsWithinLastWord is not called.
//
// *Bitmap implements Sink. A sink must not be one of the operands of the
// operation writing into it.
type Sink[W Word] interface {
	// AddWord appends one uncompressed word.
	AddWord(w W) bool
	// AddStreamOfLiteralWords appends words verbatim.
	AddStreamOfLiteralWords(words []W) bool
	// AddStreamOfEmptyWords appends n words, all ones if v is true, else all zeros.
	AddStreamOfEmptyWords(v bool, n int) bool
	// AddStreamOfNegatedLiteralWords appends the complement of words.
	AddStreamOfNegatedLiteralWords(words []W) bool
	// Clear resets the sink before an operation writes into it.
	Clear()
	// SetSizeInBitsWithinLastWord sets the final logical size, which always
	// falls within the last appended word.
	SetSizeInBitsWithinLastWord(size int)
}

// emitter forwards writes to a sink until the sink asks to stop.
type emitter[W Word] struct {
	sink    Sink[W]
	stopped bool
}

func newEmitter[W Word](sink Sink[W]) *emitter[W] {
	sink.Clear()
	return &emitter[W]{sink: sink}
}

func (e *emitter[W]) word(w W) {
	if !e.stopped {
		e.stopped = e.sink.AddWord(w)
	}
}

func (e *emitter[W]) empty(v bool, n int) {
	if n > 0 && !e.stopped {
		e.stopped = e.sink.AddStreamOfEmptyWords(v, n)
	}
}

func (e *emitter[W]) literals(words []W) {
	if len(words) > 0 && !e.stopped {
		e.stopped = e.sink.AddStreamOfLiteralWords(words)
	}
}

func (e *emitter[W]) negated(words []W) {
	if len(words) > 0 && !e.stopped {
		e.stopped = e.sink.AddStreamOfNegatedLiteralWords(words)
	}
}

func (e *emitter[W]) setSize(size int) {
	if !e.stopped {
		e.sink.SetSizeInBitsWithinLastWord(size)
	}
}

// copyTo writes the whole content of b into sink.
func copyTo[W Word](b *Bitmap[W], sink Sink[W]) {
	e := newEmitter(sink)
	newCursor(b).dischargeAll(e)
	e.setSize(b.sizeInBits)
}

// CopyTo writes the content of b into sink, which is cleared first.
func (b *Bitmap[W]) CopyTo(sink Sink[W]) {
	copyTo(b, sink)
}

// BitCounter is a Sink that only counts set bits.
type BitCounter[W Word] struct {
	count int
}

// Count returns the number of set bits written so far.
func (c *BitCounter[W]) Count() int {
	return c.count
}

// AddWord implements Sink.
func (c *BitCounter[W]) AddWord(w W) bool {
	c.count += popcount(w)
	return false
}

// AddStreamOfLiteralWords implements Sink.
func (c *BitCounter[W]) AddStreamOfLiteralWords(words []W) bool {
	for _, w := range words {
		c.count += popcount(w)
	}
	return false
}

// AddStreamOfEmptyWords implements Sink.
func (c *BitCounter[W]) AddStreamOfEmptyWords(v bool, n int) bool {
	if v {
		c.count += n * wordBits[W]()
	}
	return false
}

// AddStreamOfNegatedLiteralWords implements Sink.
func (c *BitCounter[W]) AddStreamOfNegatedLiteralWords(words []W) bool {
	for _, w := range words {
		c.count += popcount(^w)
	}
	return false
}

// Clear implements Sink.
func (c *BitCounter[W]) Clear() {
	c.count = 0
}

// SetSizeInBitsWithinLastWord implements Sink.
func (c *BitCounter[W]) SetSizeInBitsWithinLastWord(int) {}

// nonEmptySink stops the driving merge on the first set bit.
type nonEmptySink[W Word] struct {
	found bool
}

func (s *nonEmptySink[W]) AddWord(w W) bool {
	s.found = s.found || w != 0
	return s.found
}

func (s *nonEmptySink[W]) AddStreamOfLiteralWords(words []W) bool {
	for _, w := range words {
		if w != 0 {
			s.found = true
			break
		}
	}
	return s.found
}

func (s *nonEmptySink[W]) AddStreamOfEmptyWords(v bool, n int) bool {
	s.found = s.found || (v && n > 0)
	return s.found
}

func (s *nonEmptySink[W]) AddStreamOfNegatedLiteralWords(words []W) bool {
	for _, w := range words {
		if ^w != 0 {
			s.found = true
			break
		}
	}
	return s.found
}

func (s *nonEmptySink[W]) Clear() {
	s.found = false
}

func (s *nonEmptySink[W]) SetSizeInBitsWithinLastWord(int) {}
