package ewah

// boolOp is a two-operand boolean operator applied word by word.
type boolOp uint8

const (
	opAnd boolOp = iota
	opOr
	opXor
	opAndNot
)

func (op boolOp) String() string {
	switch op {
	case opAnd:
		return "and"
	case opOr:
		return "or"
	case opXor:
		return "xor"
	case opAndNot:
		return "andnot"
	default:
		return "unknown"
	}
}

func applyOp[W Word](op boolOp, x, y W) W {
	switch op {
	case opAnd:
		return x & y
	case opOr:
		return x | y
	case opXor:
		return x ^ y
	default:
		return x &^ y
	}
}

func (op boolOp) bit(x, y bool) bool {
	switch op {
	case opAnd:
		return x && y
	case opOr:
		return x || y
	case opXor:
		return x != y
	default:
		return x && !y
	}
}

// runAction is what a predator run does to the prey's words.
type runAction uint8

const (
	emitZeros runAction = iota
	emitOnes
	copyPrey
	negatePrey
)

// preyAction derives the overlap output from the operator's truth table,
// with the predator's run bit held fixed on its side.
func (op boolOp) preyAction(predatorBit, predatorIsLeft bool) runAction {
	var onZero, onOne bool
	if predatorIsLeft {
		onZero, onOne = op.bit(predatorBit, false), op.bit(predatorBit, true)
	} else {
		onZero, onOne = op.bit(false, predatorBit), op.bit(true, predatorBit)
	}
	switch {
	case !onZero && !onOne:
		return emitZeros
	case onZero && onOne:
		return emitOnes
	case onOne:
		return copyPrey
	default:
		return negatePrey
	}
}

// resolveRun consumes the predator's current run, writing the overlap and
// advancing the prey by the same number of words. A prey that runs out is
// treated as zeros.
func resolveRun[W Word](op boolOp, predator, prey *cursor[W], predatorIsLeft bool, e *emitter[W]) {
	n := predator.runLen
	switch op.preyAction(predator.runBit, predatorIsLeft) {
	case emitZeros:
		e.empty(false, n)
		prey.discardFirstWords(n)
	case emitOnes:
		e.empty(true, n)
		prey.discardFirstWords(n)
	case copyPrey:
		done := prey.discharge(e, n)
		e.empty(false, n-done)
	case negatePrey:
		done := prey.dischargeNegated(e, n)
		e.empty(true, n-done)
	}
	predator.discardRunningWords()
}

// merge applies op to a and b and writes the result into sink. Its cost is
// proportional to the number of control words and literal words of the
// operands, not to their uncompressed length.
func merge[W Word](op boolOp, a, b *Bitmap[W], sink Sink[W]) {
	e := newEmitter(sink)
	left, right := newCursor(a), newCursor(b)

	for !e.stopped && left.size() > 0 && right.size() > 0 {
		for !e.stopped && (left.runLen > 0 || right.runLen > 0) {
			if left.runLen < right.runLen {
				resolveRun(op, right, left, false, e)
			} else {
				resolveRun(op, left, right, true, e)
			}
		}
		if n := min(len(left.lits), len(right.lits)); n > 0 && !e.stopped {
			for k := 0; k < n && !e.stopped; k++ {
				e.word(applyOp(op, left.lits[k], right.lits[k]))
			}
			left.discardLiteralWords(n)
			right.discardLiteralWords(n)
		}
	}

	if !e.stopped {
		// At most one side is left; the other reads as zeros.
		rest, copyRest := left, op.bit(true, false)
		if left.size() == 0 {
			rest, copyRest = right, op.bit(false, true)
		}
		if copyRest {
			rest.dischargeAll(e)
		} else {
			rest.dischargeAsEmpty(e)
		}
	}
	e.setSize(max(a.sizeInBits, b.sizeInBits))
}

// And returns the intersection of b and other.
func (b *Bitmap[W]) And(other *Bitmap[W]) *Bitmap[W] {
	out := b.newResult(other)
	merge(opAnd, b, other, Sink[W](out))
	return out
}

// AndTo writes the intersection of b and other into sink.
func (b *Bitmap[W]) AndTo(other *Bitmap[W], sink Sink[W]) {
	merge(opAnd, b, other, sink)
}

// Or returns the union of b and other.
func (b *Bitmap[W]) Or(other *Bitmap[W]) *Bitmap[W] {
	out := b.newResult(other)
	merge(opOr, b, other, Sink[W](out))
	return out
}

// OrTo writes the union of b and other into sink.
func (b *Bitmap[W]) OrTo(other *Bitmap[W], sink Sink[W]) {
	merge(opOr, b, other, sink)
}

// Xor returns the symmetric difference of b and other.
func (b *Bitmap[W]) Xor(other *Bitmap[W]) *Bitmap[W] {
	out := b.newResult(other)
	merge(opXor, b, other, Sink[W](out))
	return out
}

// XorTo writes the symmetric difference of b and other into sink.
func (b *Bitmap[W]) XorTo(other *Bitmap[W], sink Sink[W]) {
	merge(opXor, b, other, sink)
}

// AndNot returns the bits of b that are not set in other.
func (b *Bitmap[W]) AndNot(other *Bitmap[W]) *Bitmap[W] {
	out := b.newResult(other)
	merge(opAndNot, b, other, Sink[W](out))
	return out
}

// AndNotTo writes the bits of b that are not set in other into sink.
func (b *Bitmap[W]) AndNotTo(other *Bitmap[W], sink Sink[W]) {
	merge(opAndNot, b, other, sink)
}

// AndCardinality returns the size of the intersection without building it.
func (b *Bitmap[W]) AndCardinality(other *Bitmap[W]) int {
	return mergeCardinality(opAnd, b, other)
}

// OrCardinality returns the size of the union without building it.
func (b *Bitmap[W]) OrCardinality(other *Bitmap[W]) int {
	return mergeCardinality(opOr, b, other)
}

// XorCardinality returns the size of the symmetric difference without
// building it.
func (b *Bitmap[W]) XorCardinality(other *Bitmap[W]) int {
	return mergeCardinality(opXor, b, other)
}

// AndNotCardinality returns the size of b AND NOT other without building it.
func (b *Bitmap[W]) AndNotCardinality(other *Bitmap[W]) int {
	return mergeCardinality(opAndNot, b, other)
}

func mergeCardinality[W Word](op boolOp, a, b *Bitmap[W]) int {
	var c BitCounter[W]
	merge(op, a, b, Sink[W](&c))
	return c.Count()
}

// Intersects reports whether b and other share a set bit. It stops at the
// first common bit.
func (b *Bitmap[W]) Intersects(other *Bitmap[W]) bool {
	var s nonEmptySink[W]
	merge(opAnd, b, other, Sink[W](&s))
	return s.found
}

// Equals reports whether b and other have the same set bits. The sizes in
// bits are not compared.
//
// The comparison XORs the operands and stops at the first differing word, so
// bitmaps that differ early are rejected quickly while bitmaps that differ
// late, or not at all, pay for a full merge.
func (b *Bitmap[W]) Equals(other *Bitmap[W]) bool {
	if b == other {
		return true
	}
	var s nonEmptySink[W]
	merge(opXor, b, other, Sink[W](&s))
	return !s.found
}

// newResult allocates an output bitmap sized for a merge of b and other.
func (b *Bitmap[W]) newResult(other *Bitmap[W]) *Bitmap[W] {
	out := &Bitmap[W]{
		buffer:            make([]W, max(b.actualSizeInWords, other.actualSizeInWords, DefaultBufferSize)),
		actualSizeInWords: 1,
		maxWords:          max(b.maxWords, other.maxWords),
	}
	return out
}
