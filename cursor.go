package ewah

import "github.com/hupe1980/ewah/internal/rlw"

// cursor is a buffered position inside a bitmap's word stream. It supports
// consuming part of a run or part of a literal span, which is what lets two
// operands with misaligned groups be merged.
//
// Invariant: after every operation either size() > 0 or the stream is
// exhausted.
type cursor[W Word] struct {
	it     rlwIterator[W]
	runBit bool
	runLen int
	lits   []W
}

func newCursor[W Word](b *Bitmap[W]) *cursor[W] {
	c := &cursor[W]{it: newRLWIterator(b)}
	c.settle()
	return c
}

func (c *cursor[W]) load() {
	cw, lits := c.it.next()
	c.runBit = rlw.RunningBit(cw)
	c.runLen = int(rlw.RunningLength(cw))
	c.lits = lits
}

// settle skips consumed and empty groups.
func (c *cursor[W]) settle() {
	for c.runLen == 0 && len(c.lits) == 0 && c.it.hasNext() {
		c.load()
	}
}

// size is the number of words left in the current group; 0 means exhausted.
func (c *cursor[W]) size() int {
	return c.runLen + len(c.lits)
}

// runWord returns the uncompressed value of a word of the current run.
func (c *cursor[W]) runWord() W {
	if c.runBit {
		return allOnes[W]()
	}
	return 0
}

func (c *cursor[W]) discardFirstWords(n int) {
	for n > 0 && c.size() > 0 {
		if c.runLen > n {
			c.runLen -= n
			return
		}
		n -= c.runLen
		c.runLen = 0
		k := min(n, len(c.lits))
		c.lits = c.lits[k:]
		n -= k
		c.settle()
	}
	c.settle()
}

func (c *cursor[W]) discardRunningWords() {
	c.runLen = 0
	c.settle()
}

func (c *cursor[W]) discardLiteralWords(n int) {
	c.lits = c.lits[n:]
	c.settle()
}

// discharge copies up to n words into e and returns how many were copied.
// Fewer than n are copied only when the cursor runs out.
func (c *cursor[W]) discharge(e *emitter[W], n int) int {
	return c.dischargeWith(e, n, false)
}

// dischargeNegated is discharge with every copied word complemented.
func (c *cursor[W]) dischargeNegated(e *emitter[W], n int) int {
	return c.dischargeWith(e, n, true)
}

func (c *cursor[W]) dischargeWith(e *emitter[W], n int, negate bool) int {
	done := 0
	for done < n && c.size() > 0 && !e.stopped {
		if c.runLen > 0 {
			k := min(c.runLen, n-done)
			e.empty(c.runBit != negate, k)
			c.runLen -= k
			done += k
		} else {
			k := min(len(c.lits), n-done)
			if negate {
				e.negated(c.lits[:k])
			} else {
				e.literals(c.lits[:k])
			}
			c.lits = c.lits[k:]
			done += k
		}
		c.settle()
	}
	return done
}

// dischargeAll copies everything that is left.
func (c *cursor[W]) dischargeAll(e *emitter[W]) {
	for c.size() > 0 && !e.stopped {
		e.empty(c.runBit, c.runLen)
		e.literals(c.lits)
		c.runLen = 0
		c.lits = nil
		c.settle()
	}
}

// dischargeAsEmpty emits zero words for everything that is left.
func (c *cursor[W]) dischargeAsEmpty(e *emitter[W]) {
	for c.size() > 0 && !e.stopped {
		e.empty(false, c.size())
		c.runLen = 0
		c.lits = nil
		c.settle()
	}
}
