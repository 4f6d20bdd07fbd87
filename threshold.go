package ewah

import "math/bits"

// SymmetricFunc decides an output bit from the number of operands that have
// the bit set (ones) out of n operands. Any symmetric boolean function of the
// operands can be expressed this way: AND is ones == n, OR is ones > 0, XOR is
// ones odd.
type SymmetricFunc func(ones, n int) bool

// AtLeast is set where at least t operands are set.
func AtLeast(t int) SymmetricFunc {
	return func(ones, _ int) bool { return ones >= t }
}

// Majority is set where more than half of the operands are set.
func Majority() SymmetricFunc {
	return func(ones, n int) bool { return 2*ones > n }
}

// Exactly is set where exactly k operands are set.
func Exactly(k int) SymmetricFunc {
	return func(ones, _ int) bool { return ones == k }
}

// Threshold returns the positions set in at least t of the bitmaps.
func (a *Aggregator[W]) Threshold(t int, bitmaps ...*Bitmap[W]) *Bitmap[W] {
	return a.Symmetric(AtLeast(t), bitmaps...)
}

// ThresholdTo writes the positions set in at least t of the bitmaps into sink.
func (a *Aggregator[W]) ThresholdTo(t int, sink Sink[W], bitmaps ...*Bitmap[W]) {
	a.SymmetricTo(AtLeast(t), sink, bitmaps...)
}

// ThresholdCardinality returns the number of positions set in at least t of
// the bitmaps.
func (a *Aggregator[W]) ThresholdCardinality(t int, bitmaps ...*Bitmap[W]) int {
	var c BitCounter[W]
	a.SymmetricTo(AtLeast(t), Sink[W](&c), bitmaps...)
	return c.Count()
}

// Symmetric evaluates f at every position below the largest operand size.
func (a *Aggregator[W]) Symmetric(f SymmetricFunc, bitmaps ...*Bitmap[W]) *Bitmap[W] {
	out := a.newOutput()
	a.SymmetricTo(f, Sink[W](out), bitmaps...)
	return out
}

// SymmetricTo writes the result of f over bitmaps into sink.
//
// The operands advance in lockstep by the longest span on which each of them
// is either inside a run or inside its literal words. Spans where every
// operand is a run produce a run; literal spans count set bits per position
// with bit-sliced counters, one word at a time.
func (a *Aggregator[W]) SymmetricTo(f SymmetricFunc, sink Sink[W], bitmaps ...*Bitmap[W]) {
	a.opts.logger.LogAggregate("symmetric", len(bitmaps), strategyLockstep)
	symmetric(f, sink, bitmaps)
}

func symmetric[W Word](f SymmetricFunc, sink Sink[W], bitmaps []*Bitmap[W]) {
	n := len(bitmaps)
	table := make([]bool, n+1)
	for c := range table {
		table[c] = f(c, n)
	}

	size := maxSizeInBits(bitmaps)
	out := &tailEmitter[W]{e: newEmitter(sink), total: wordsFor[W](size), tail: allOnes[W]()}
	if used := size % wordBits[W](); used != 0 {
		out.tail = lowMask[W](used)
	}

	active := make([]*cursor[W], 0, n)
	for _, bm := range bitmaps {
		if c := newCursor(bm); c.size() > 0 {
			active = append(active, c)
		}
	}
	counter := newBitCounters[W](n, table)

	for out.done < out.total && !out.e.stopped {
		if len(active) == 0 {
			out.run(table[0], out.total-out.done)
			break
		}

		span, ones, literal := out.total-out.done, 0, false
		for _, c := range active {
			if c.runLen > 0 {
				span = min(span, c.runLen)
				if c.runBit {
					ones++
				}
			} else {
				span = min(span, len(c.lits))
				literal = true
			}
		}

		if literal {
			for k := 0; k < span; k++ {
				counter.reset()
				for _, c := range active {
					if c.runLen > 0 {
						counter.add(c.runWord())
					} else {
						counter.add(c.lits[k])
					}
				}
				out.word(counter.result())
			}
		} else {
			out.run(table[ones], span)
		}

		live := active[:0]
		for _, c := range active {
			c.discardFirstWords(span)
			if c.size() > 0 {
				live = append(live, c)
			}
		}
		active = live
	}
	out.e.setSize(size)
}

// tailEmitter clears the bits past the logical size in the final word.
type tailEmitter[W Word] struct {
	e     *emitter[W]
	total int
	done  int
	tail  W
}

func (t *tailEmitter[W]) run(v bool, n int) {
	if n <= 0 {
		return
	}
	if !v || t.done+n < t.total || t.tail == allOnes[W]() {
		t.e.empty(v, n)
	} else {
		t.e.empty(true, n-1)
		t.e.word(t.tail)
	}
	t.done += n
}

func (t *tailEmitter[W]) word(w W) {
	if t.done == t.total-1 {
		w &= t.tail
	}
	t.e.word(w)
	t.done++
}

// bitCounters holds, per bit position of a word, how many operand words had
// that bit set, as a ripple-carry binary number spread over slices.
type bitCounters[W Word] struct {
	slices []W
	// match lists the counts to report; invert means the complement of the
	// listed counts is reported instead.
	match  []int
	invert bool
}

func newBitCounters[W Word](n int, table []bool) *bitCounters[W] {
	var on, off []int
	for c, v := range table {
		if v {
			on = append(on, c)
		} else {
			off = append(off, c)
		}
	}
	bc := &bitCounters[W]{slices: make([]W, bits.Len(uint(n))), match: on}
	if len(off) < len(on) {
		bc.match, bc.invert = off, true
	}
	return bc
}

func (bc *bitCounters[W]) reset() {
	clear(bc.slices)
}

func (bc *bitCounters[W]) add(x W) {
	carry := x
	for j := range bc.slices {
		if carry == 0 {
			return
		}
		next := bc.slices[j] & carry
		bc.slices[j] ^= carry
		carry = next
	}
}

// eq returns the mask of positions whose count equals c.
func (bc *bitCounters[W]) eq(c int) W {
	m := allOnes[W]()
	for j, s := range bc.slices {
		if c>>j&1 == 1 {
			m &= s
		} else {
			m &^= s
		}
	}
	return m
}

func (bc *bitCounters[W]) result() W {
	var r W
	for _, c := range bc.match {
		r |= bc.eq(c)
	}
	if bc.invert {
		return ^r
	}
	return r
}

// Threshold returns the positions set in at least t of the bitmaps using
// default options.
func Threshold[W Word](t int, bitmaps ...*Bitmap[W]) *Bitmap[W] {
	return NewAggregator[W]().Threshold(t, bitmaps...)
}

// Symmetric evaluates f over the bitmaps using default options.
func Symmetric[W Word](f SymmetricFunc, bitmaps ...*Bitmap[W]) *Bitmap[W] {
	return NewAggregator[W]().Symmetric(f, bitmaps...)
}
