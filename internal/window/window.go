package window

import (
	"math/bits"
	"sync"

	"github.com/hupe1980/ewah/internal/rlw"
)

// BlockSize is the number of words per tracked block.
const BlockSize = 8

// BlocksPerMaskWord is the number of blocks tracked per active mask word.
const BlocksPerMaskWord = 64

// Window is a dense run of uncompressed words that many operands are folded
// into before being emitted in order.
//
// Blocks of BlockSize words are tracked in a two-level active mask so that
// clearing and emitting skip blocks nothing was written to.
//
// Memory layout:
//
//	┌──────────────────────────────────────────────────┐
//	│  Block 0        │  Block 1        │  Block 2 ... │
//	│  8 words        │  8 words        │              │
//	└──────────────────────────────────────────────────┘
//
//	active mask word k: bit i = 1 if block 64k+i was written
type Window[W rlw.Word] struct {
	words  []W
	active []uint64
	n      int

	ownedByPool bool
}

// New returns a window able to hold capacity words.
func New[W rlw.Word](capacity int) *Window[W] {
	capacity = max(capacity, 1)
	numWords := (capacity + BlockSize - 1) / BlockSize * BlockSize
	numBlocks := numWords / BlockSize
	return &Window[W]{
		words:  make([]W, numWords),
		active: make([]uint64, (numBlocks+BlocksPerMaskWord-1)/BlocksPerMaskWord),
	}
}

// Cap returns the largest length Reset accepts.
func (w *Window[W]) Cap() int {
	return len(w.words)
}

// Len returns the number of words in use.
func (w *Window[W]) Len() int {
	return w.n
}

// Reset clears the window and sets its length to n words.
// It panics if n exceeds Cap.
func (w *Window[W]) Reset(n int) {
	if n > len(w.words) {
		panic("window: length exceeds capacity")
	}
	w.Clear()
	w.n = n
}

//go:nosplit
func (w *Window[W]) touch(i int) {
	block := i / BlockSize
	w.active[block/BlocksPerMaskWord] |= uint64(1) << (block % BlocksPerMaskWord)
}

func (w *Window[W]) touchRange(start, n int) {
	first, last := start/BlockSize, (start+n-1)/BlockSize
	for b := first; b <= last; b++ {
		w.active[b/BlocksPerMaskWord] |= uint64(1) << (b % BlocksPerMaskWord)
	}
}

// Or ORs v into word i.
func (w *Window[W]) Or(i int, v W) {
	if v == 0 {
		return
	}
	w.words[i] |= v
	w.touch(i)
}

// Xor XORs v into word i.
func (w *Window[W]) Xor(i int, v W) {
	if v == 0 {
		return
	}
	w.words[i] ^= v
	w.touch(i)
}

// OrWords ORs src into the words starting at i.
func (w *Window[W]) OrWords(i int, src []W) {
	for k, v := range src {
		w.Or(i+k, v)
	}
}

// XorWords XORs src into the words starting at i.
func (w *Window[W]) XorWords(i int, src []W) {
	for k, v := range src {
		w.Xor(i+k, v)
	}
}

// Fill sets n words starting at start to all ones.
func (w *Window[W]) Fill(start, n int) {
	if n <= 0 {
		return
	}
	dst := w.words[start : start+n]
	for k := range dst {
		dst[k] = ^W(0)
	}
	w.touchRange(start, n)
}

// Flip complements n words starting at start.
func (w *Window[W]) Flip(start, n int) {
	if n <= 0 {
		return
	}
	dst := w.words[start : start+n]
	for k := range dst {
		dst[k] = ^dst[k]
	}
	w.touchRange(start, n)
}

// Words returns the words in use. Words of untouched blocks are zero.
func (w *Window[W]) Words() []W {
	return w.words[:w.n]
}

// Spans calls fn for consecutive spans of the words in use, in order. Spans
// of untouched blocks are reported with dense == false and hold only zeros.
// Iteration stops when fn returns false.
func (w *Window[W]) Spans(fn func(words []W, dense bool) bool) {
	start := 0
	for start < w.n {
		dense := w.isActive(start / BlockSize)
		end := start
		for end < w.n && w.isActive(end/BlockSize) == dense {
			end = min((end/BlockSize+1)*BlockSize, w.n)
		}
		if !fn(w.words[start:end], dense) {
			return
		}
		start = end
	}
}

func (w *Window[W]) isActive(block int) bool {
	return w.active[block/BlocksPerMaskWord]&(uint64(1)<<(block%BlocksPerMaskWord)) != 0
}

// ActiveBlocks returns the number of blocks written since the last Clear.
func (w *Window[W]) ActiveBlocks() int {
	n := 0
	for _, m := range w.active {
		n += bits.OnesCount64(m)
	}
	return n
}

// Clear zeroes the written blocks only.
func (w *Window[W]) Clear() {
	for maskIdx, mask := range w.active {
		for mask != 0 {
			block := maskIdx*BlocksPerMaskWord + bits.TrailingZeros64(mask)
			clear(w.words[block*BlockSize : (block+1)*BlockSize])
			mask &= mask - 1
		}
		w.active[maskIdx] = 0
	}
}

// Pool is a pool of reusable windows of one capacity. Safe for concurrent use.
type Pool[W rlw.Word] struct {
	pool     sync.Pool
	capacity int
}

// NewPool returns a pool of windows holding capacity words each.
func NewPool[W rlw.Word](capacity int) *Pool[W] {
	p := &Pool[W]{capacity: capacity}
	p.pool.New = func() any {
		w := New[W](capacity)
		w.ownedByPool = true
		return w
	}
	return p
}

// Get retrieves a cleared window from the pool.
func (p *Pool[W]) Get() *Window[W] {
	return p.pool.Get().(*Window[W])
}

// Put clears w and returns it to the pool. Windows not created by a pool are
// dropped.
func (p *Pool[W]) Put(w *Window[W]) {
	if w == nil || !w.ownedByPool {
		return
	}
	w.Clear()
	w.n = 0
	p.pool.Put(w)
}
