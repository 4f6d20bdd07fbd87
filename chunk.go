package ewah

import (
	"math/bits"

	"github.com/hupe1980/ewah/internal/rlw"
)

// ChunkIterator walks a bitmap as maximal spans of equal bits. Adjacent spans
// always differ in value and the spans cover exactly [0, SizeInBits).
//
//	for it := b.ChunkIterator(); it.HasNext(); it.Move(it.NextLength()) {
//		fmt.Println(it.NextBit(), it.NextLength())
//	}
type ChunkIterator[W Word] struct {
	it        rlwIterator[W]
	runBit    bool
	runWords  int
	lits      []W
	shift     int
	remaining int

	bit    bool
	length int

	pendingBit bool
	pendingLen int
}

// ChunkIterator returns an iterator over the bit spans of b.
func (b *Bitmap[W]) ChunkIterator() *ChunkIterator[W] {
	c := &ChunkIterator[W]{it: newRLWIterator(b), remaining: b.sizeInBits}
	c.pendingBit, c.pendingLen = c.raw()
	c.fill()
	return c
}

// HasNext reports whether a span is left.
func (c *ChunkIterator[W]) HasNext() bool {
	return c.length > 0
}

// NextBit returns the value of the current span.
func (c *ChunkIterator[W]) NextBit() bool {
	return c.bit
}

// NextLength returns the number of bits left in the current span.
func (c *ChunkIterator[W]) NextLength() int {
	return c.length
}

// Move consumes n bits, crossing into following spans when n exceeds the
// current one.
func (c *ChunkIterator[W]) Move(n int) {
	for n > 0 && c.length > 0 {
		k := min(n, c.length)
		c.length -= k
		n -= k
		if c.length == 0 {
			c.fill()
		}
	}
}

// fill makes the pending raw span current and coalesces its successors.
func (c *ChunkIterator[W]) fill() {
	c.bit, c.length = c.pendingBit, c.pendingLen
	c.pendingLen = 0
	if c.length == 0 {
		return
	}
	for {
		bit, n := c.raw()
		if n > 0 && bit == c.bit {
			c.length += n
			continue
		}
		c.pendingBit, c.pendingLen = bit, n
		return
	}
}

// raw returns the next uniform span of the word stream, clipped to the
// logical size. A zero length means the stream is exhausted.
func (c *ChunkIterator[W]) raw() (bool, int) {
	width := wordBits[W]()
	for c.remaining > 0 {
		if c.runWords > 0 {
			n := min(c.runWords*width, c.remaining)
			c.runWords = 0
			c.remaining -= n
			return c.runBit, n
		}
		if len(c.lits) > 0 {
			w := uint64(c.lits[0] >> c.shift)
			bit := w&1 == 1
			var n int
			if bit {
				n = bits.TrailingZeros64(^w)
			} else {
				n = bits.TrailingZeros64(w)
			}
			n = min(n, width-c.shift, c.remaining)
			c.shift += n
			if c.shift == width {
				c.lits = c.lits[1:]
				c.shift = 0
			}
			c.remaining -= n
			return bit, n
		}
		if !c.it.hasNext() {
			break
		}
		cw, lits := c.it.next()
		c.runBit = rlw.RunningBit(cw)
		c.runWords = int(rlw.RunningLength(cw))
		c.lits = lits
		c.shift = 0
	}
	return false, 0
}

// spanWriter packs bit spans into words for a sink.
type spanWriter[W Word] struct {
	e     *emitter[W]
	cur   W
	used  int
	total int
}

func (s *spanWriter[W]) write(bit bool, n int) {
	if n <= 0 {
		return
	}
	width := wordBits[W]()
	s.total += n
	if s.used > 0 {
		k := min(n, width-s.used)
		if bit {
			s.cur |= lowMask[W](k) << s.used
		}
		s.used += k
		n -= k
		if s.used == width {
			s.e.word(s.cur)
			s.cur, s.used = 0, 0
		}
	}
	if whole := n / width; whole > 0 {
		s.e.empty(bit, whole)
		n -= whole * width
	}
	if n > 0 {
		if bit {
			s.cur = lowMask[W](n)
		}
		s.used = n
	}
}

func (s *spanWriter[W]) finish() {
	if s.used > 0 {
		s.e.word(s.cur)
	}
	s.e.setSize(s.total)
}
