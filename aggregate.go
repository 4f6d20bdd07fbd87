package ewah

import (
	"container/heap"

	"github.com/hupe1980/ewah/internal/window"
)

// Aggregation strategies reported in debug logs.
const (
	strategyEmpty    = "empty"
	strategyCopy     = "copy"
	strategyBuffered = "buffered"
	strategyPairwise = "pairwise"
	strategyLockstep = "lockstep"
)

// Aggregator computes AND, OR, XOR and threshold functions over many bitmaps
// at once.
//
// OR and XOR pick between two strategies per call. When the operands compress
// poorly they are folded into a pooled dense window in a single pass;
// otherwise they are merged pairwise, always combining the two smallest
// operands first. The switch is tuned with WithDenseRatio and is a
// performance heuristic only: both strategies produce the same bits.
//
// An Aggregator is safe for concurrent use.
type Aggregator[W Word] struct {
	opts options
	pool *window.Pool[W]
}

// NewAggregator returns an Aggregator for bitmaps over words of type W.
func NewAggregator[W Word](opts ...Option) *Aggregator[W] {
	o := applyOptions(opts)
	return &Aggregator[W]{
		opts: o,
		pool: window.NewPool[W](o.windowWords),
	}
}

// And returns the intersection of all bitmaps.
func (a *Aggregator[W]) And(bitmaps ...*Bitmap[W]) *Bitmap[W] {
	out := a.newOutput()
	a.AndTo(Sink[W](out), bitmaps...)
	return out
}

// AndTo writes the intersection of all bitmaps into sink.
func (a *Aggregator[W]) AndTo(sink Sink[W], bitmaps ...*Bitmap[W]) {
	switch len(bitmaps) {
	case 0:
		a.log(opAnd, 0, strategyEmpty)
		newEmitter(sink).setSize(0)
		return
	case 1:
		a.log(opAnd, 1, strategyCopy)
		copyTo(bitmaps[0], sink)
		return
	case 2:
		a.log(opAnd, 2, strategyPairwise)
		merge(opAnd, bitmaps[0], bitmaps[1], sink)
		return
	}
	a.log(opAnd, len(bitmaps), strategyPairwise)

	ordered := sortedBySize(bitmaps)
	size := maxSizeInBits(bitmaps)
	acc := ordered[0].And(ordered[1])
	for _, bm := range ordered[2 : len(ordered)-1] {
		if acc.IsEmpty() {
			break
		}
		acc = acc.And(bm)
	}
	if acc.IsEmpty() {
		e := newEmitter(sink)
		e.empty(false, wordsFor[W](size))
		e.setSize(size)
		return
	}
	merge(opAnd, acc, ordered[len(ordered)-1], sink)
}

// Or returns the union of all bitmaps.
func (a *Aggregator[W]) Or(bitmaps ...*Bitmap[W]) *Bitmap[W] {
	out := a.newOutput()
	a.OrTo(Sink[W](out), bitmaps...)
	return out
}

// OrTo writes the union of all bitmaps into sink.
func (a *Aggregator[W]) OrTo(sink Sink[W], bitmaps ...*Bitmap[W]) {
	a.fold(opOr, sink, bitmaps)
}

// Xor returns the symmetric difference of all bitmaps: the positions set in
// an odd number of them.
func (a *Aggregator[W]) Xor(bitmaps ...*Bitmap[W]) *Bitmap[W] {
	out := a.newOutput()
	a.XorTo(Sink[W](out), bitmaps...)
	return out
}

// XorTo writes the symmetric difference of all bitmaps into sink.
func (a *Aggregator[W]) XorTo(sink Sink[W], bitmaps ...*Bitmap[W]) {
	a.fold(opXor, sink, bitmaps)
}

// AndCardinality returns the size of the intersection of all bitmaps.
func (a *Aggregator[W]) AndCardinality(bitmaps ...*Bitmap[W]) int {
	var c BitCounter[W]
	a.AndTo(Sink[W](&c), bitmaps...)
	return c.Count()
}

// OrCardinality returns the size of the union of all bitmaps.
func (a *Aggregator[W]) OrCardinality(bitmaps ...*Bitmap[W]) int {
	var c BitCounter[W]
	a.OrTo(Sink[W](&c), bitmaps...)
	return c.Count()
}

// XorCardinality returns the size of the symmetric difference of all bitmaps.
func (a *Aggregator[W]) XorCardinality(bitmaps ...*Bitmap[W]) int {
	var c BitCounter[W]
	a.XorTo(Sink[W](&c), bitmaps...)
	return c.Count()
}

func (a *Aggregator[W]) fold(op boolOp, sink Sink[W], bitmaps []*Bitmap[W]) {
	switch len(bitmaps) {
	case 0:
		a.log(op, 0, strategyEmpty)
		newEmitter(sink).setSize(0)
		return
	case 1:
		a.log(op, 1, strategyCopy)
		copyTo(bitmaps[0], sink)
		return
	}
	if a.preferBuffered(bitmaps) {
		a.log(op, len(bitmaps), strategyBuffered)
		a.buffered(op, sink, bitmaps)
		return
	}
	a.log(op, len(bitmaps), strategyPairwise)
	pairwise(op, sink, bitmaps)
}

// preferBuffered reports whether the operands compress poorly enough that
// one pass over a dense window beats repeated pairwise merging.
func (a *Aggregator[W]) preferBuffered(bitmaps []*Bitmap[W]) bool {
	if a.opts.denseRatio <= 0 {
		return false
	}
	bytes := 0
	for _, bm := range bitmaps {
		bytes += bm.SizeInBytes()
	}
	return bytes*a.opts.denseRatio > maxSizeInBits(bitmaps)
}

// buffered folds every operand into a dense window, one window of words at a
// time, and emits each window once.
func (a *Aggregator[W]) buffered(op boolOp, sink Sink[W], bitmaps []*Bitmap[W]) {
	e := newEmitter(sink)
	size := maxSizeInBits(bitmaps)
	total := wordsFor[W](size)

	cursors := make([]*cursor[W], len(bitmaps))
	for i, bm := range bitmaps {
		cursors[i] = newCursor(bm)
	}

	win := a.pool.Get()
	defer a.pool.Put(win)

	for start := 0; start < total && !e.stopped; {
		n := min(win.Cap(), total-start)
		win.Reset(n)
		for _, c := range cursors {
			foldInto(win, c, n, op == opXor)
		}
		win.Spans(func(words []W, dense bool) bool {
			if !dense {
				e.empty(false, len(words))
				return !e.stopped
			}
			for _, w := range words {
				e.word(w)
			}
			return !e.stopped
		})
		start += n
	}
	e.setSize(size)
}

// foldInto ORs (or XORs) the next n words of c into win.
func foldInto[W Word](win *window.Window[W], c *cursor[W], n int, xor bool) {
	for pos := 0; pos < n && c.size() > 0; {
		if c.runLen > 0 {
			k := min(c.runLen, n-pos)
			if c.runBit {
				if xor {
					win.Flip(pos, k)
				} else {
					win.Fill(pos, k)
				}
			}
			c.discardFirstWords(k)
			pos += k
			continue
		}
		k := min(len(c.lits), n-pos)
		if xor {
			win.XorWords(pos, c.lits[:k])
		} else {
			win.OrWords(pos, c.lits[:k])
		}
		c.discardLiteralWords(k)
		pos += k
	}
}

// pairwise merges the two smallest operands until two are left, then merges
// those into sink.
func pairwise[W Word](op boolOp, sink Sink[W], bitmaps []*Bitmap[W]) {
	h := make(sizeHeap[W], len(bitmaps))
	copy(h, bitmaps)
	heap.Init(&h)
	for h.Len() > 2 {
		x := heap.Pop(&h).(*Bitmap[W])
		y := heap.Pop(&h).(*Bitmap[W])
		out := x.newResult(y)
		merge(op, x, y, Sink[W](out))
		heap.Push(&h, out)
	}
	merge(op, h[0], h[1], sink)
}

// sizeHeap is a min-heap of bitmaps ordered by compressed size.
type sizeHeap[W Word] []*Bitmap[W]

func (h sizeHeap[W]) Len() int           { return len(h) }
func (h sizeHeap[W]) Less(i, j int) bool { return h[i].actualSizeInWords < h[j].actualSizeInWords }
func (h sizeHeap[W]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *sizeHeap[W]) Push(x any) {
	*h = append(*h, x.(*Bitmap[W]))
}

func (h *sizeHeap[W]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

func sortedBySize[W Word](bitmaps []*Bitmap[W]) []*Bitmap[W] {
	h := make(sizeHeap[W], len(bitmaps))
	copy(h, bitmaps)
	heap.Init(&h)
	out := make([]*Bitmap[W], 0, len(bitmaps))
	for h.Len() > 0 {
		out = append(out, heap.Pop(&h).(*Bitmap[W]))
	}
	return out
}

func maxSizeInBits[W Word](bitmaps []*Bitmap[W]) int {
	size := 0
	for _, bm := range bitmaps {
		size = max(size, bm.sizeInBits)
	}
	return size
}

func wordsFor[W Word](sizeInBits int) int {
	w := wordBits[W]()
	return (sizeInBits + w - 1) / w
}

func (a *Aggregator[W]) newOutput() *Bitmap[W] {
	return NewBitmap[W](WithInitialCapacity(a.opts.initialCapacity), WithMaxBufferSize(a.opts.maxBufferSize))
}

func (a *Aggregator[W]) log(op boolOp, operands int, strategy string) {
	a.opts.logger.LogAggregate(op.String(), operands, strategy)
}

// And returns the intersection of all bitmaps using default options.
func And[W Word](bitmaps ...*Bitmap[W]) *Bitmap[W] {
	return NewAggregator[W]().And(bitmaps...)
}

// Or returns the union of all bitmaps using default options.
func Or[W Word](bitmaps ...*Bitmap[W]) *Bitmap[W] {
	return NewAggregator[W]().Or(bitmaps...)
}

// Xor returns the symmetric difference of all bitmaps using default options.
func Xor[W Word](bitmaps ...*Bitmap[W]) *Bitmap[W] {
	return NewAggregator[W]().Xor(bitmaps...)
}
