package ewah

import (
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/hupe1980/ewah/internal/rlw"
)

// Word is the set of unsigned integer types a Bitmap can be built from.
// uint64 is the default; uint32 trades compression granularity for smaller
// control words.
type Word = rlw.Word

// Bitmap is an EWAH-compressed bitmap over words of type W.
//
// The buffer is a sequence of control words, each followed by its literal
// words. Runs of all-zero or all-one words are stored as a count inside the
// control word and never materialised.
//
// The zero value is an empty bitmap with the MaxBufferSize limit. A Bitmap
// that is no longer mutated is safe for concurrent readers.
// Mutating methods require external synchronization.
type Bitmap[W Word] struct {
	buffer            []W
	actualSizeInWords int
	rlwPos            int
	sizeInBits        int
	maxWords          int
}

// Bitmap64 is the default 64-bit word bitmap.
type Bitmap64 = Bitmap[uint64]

// Bitmap32 is the 32-bit word bitmap.
type Bitmap32 = Bitmap[uint32]

// NewBitmap returns an empty bitmap over words of type W.
func NewBitmap[W Word](opts ...Option) *Bitmap[W] {
	o := applyOptions(opts)
	return &Bitmap[W]{
		buffer:            make([]W, o.initialCapacity),
		actualSizeInWords: 1,
		maxWords:          o.maxBufferSize,
	}
}

// New returns an empty 64-bit word bitmap.
func New(opts ...Option) *Bitmap64 {
	return NewBitmap[uint64](opts...)
}

// New32 returns an empty 32-bit word bitmap.
func New32(opts ...Option) *Bitmap32 {
	return NewBitmap[uint32](opts...)
}

// BitmapOf returns a 64-bit word bitmap with the given positions set.
// Positions may be given in any order; duplicates are ignored.
// It panics if a position is negative or above MaxPosition.
func BitmapOf(positions ...int) *Bitmap64 {
	return BitmapOfWords[uint64](positions...)
}

// BitmapOf32 is BitmapOf for 32-bit words.
func BitmapOf32(positions ...int) *Bitmap32 {
	return BitmapOfWords[uint32](positions...)
}

// BitmapOfWords returns a bitmap over words of type W with the given
// positions set.
func BitmapOfWords[W Word](positions ...int) *Bitmap[W] {
	sorted := slices.Clone(positions)
	slices.Sort(sorted)
	b := NewBitmap[W]()
	for _, p := range sorted {
		b.Set(p)
	}
	return b
}

// MaxPosition returns the largest settable position for words of type W.
func MaxPosition[W Word]() int {
	return math.MaxInt32 - wordBits[W]()
}

func wordBits[W Word]() int {
	return rlw.Bits[W]()
}

func allOnes[W Word]() W {
	return ^W(0)
}

// lowMask returns a word with the n lowest bits set, 0 < n <= width.
func lowMask[W Word](n int) W {
	return ^W(0) >> (wordBits[W]() - n)
}

func popcount[W Word](w W) int {
	return bits.OnesCount64(uint64(w))
}

// SizeInBits returns the logical length of the bitmap.
func (b *Bitmap[W]) SizeInBits() int {
	return b.sizeInBits
}

// SizeInWords returns the number of words in use, control words included.
func (b *Bitmap[W]) SizeInWords() int {
	return b.actualSizeInWords
}

// SizeInBytes returns the in-memory size of the words in use.
func (b *Bitmap[W]) SizeInBytes() int {
	return b.actualSizeInWords * wordBits[W]() / 8
}

// IsEmpty reports whether no bit is set.
func (b *Bitmap[W]) IsEmpty() bool {
	return b.FirstSetBit() < 0
}

func (b *Bitmap[W]) words() []W {
	return b.buffer[:b.actualSizeInWords]
}

// rlw returns the current control word. A zero Bitmap gets its first
// control word here.
func (b *Bitmap[W]) rlw() *W {
	if b.actualSizeInWords == 0 {
		b.ensureCapacity(1)
		b.buffer[0] = 0
		b.actualSizeInWords = 1
		b.rlwPos = 0
	}
	return &b.buffer[b.rlwPos]
}

func (b *Bitmap[W]) lastWord() *W {
	return &b.buffer[b.actualSizeInWords-1]
}

// encodedWords is the number of uncompressed words the buffer describes.
func (b *Bitmap[W]) encodedWords() int {
	n := 0
	for it := newRLWIterator(b); it.hasNext(); {
		w, lits := it.next()
		n += int(rlw.RunningLength(w)) + len(lits)
	}
	return n
}

func (b *Bitmap[W]) limit() int {
	if b.maxWords <= 0 {
		return MaxBufferSize
	}
	return b.maxWords
}

func (b *Bitmap[W]) ensureCapacity(need int) {
	if need <= len(b.buffer) {
		return
	}
	limit := b.limit()
	if need > limit {
		panic(fmt.Errorf("%w: %d words requested, limit %d", ErrBufferOverflow, need, limit))
	}
	n := max(len(b.buffer), 1)
	for n < need {
		if n < GrowthThreshold {
			n *= 2
		} else {
			n += n / 2
		}
		if n > limit || n < 0 {
			n = limit
		}
	}
	grown := make([]W, n)
	copy(grown, b.buffer[:b.actualSizeInWords])
	b.buffer = grown
}

func (b *Bitmap[W]) pushBack(w W) {
	b.ensureCapacity(b.actualSizeInWords + 1)
	b.buffer[b.actualSizeInWords] = w
	b.actualSizeInWords++
}

func (b *Bitmap[W]) pushBackWords(words []W, negate bool) {
	b.ensureCapacity(b.actualSizeInWords + len(words))
	dst := b.buffer[b.actualSizeInWords : b.actualSizeInWords+len(words)]
	if negate {
		for i, w := range words {
			dst[i] = ^w
		}
	} else {
		copy(dst, words)
	}
	b.actualSizeInWords += len(words)
}

// pushRLW appends a fresh control word and makes it current.
func (b *Bitmap[W]) pushRLW() {
	b.pushBack(0)
	b.rlwPos = b.actualSizeInWords - 1
}

// alignSize rounds sizeInBits up to a word boundary so whole words can be
// appended without shifting.
func (b *Bitmap[W]) alignSize() {
	w := wordBits[W]()
	if r := b.sizeInBits % w; r != 0 {
		b.sizeInBits += w - r
	}
}

func (b *Bitmap[W]) addWord(w W, bitsThatMatter int) {
	b.sizeInBits += bitsThatMatter
	switch w {
	case 0:
		b.insertEmptyWord(false)
	case allOnes[W]():
		b.insertEmptyWord(true)
	default:
		b.insertLiteralWord(w)
	}
}

func (b *Bitmap[W]) insertEmptyWord(v bool) {
	cur := b.rlw()
	noLiterals := rlw.LiteralWords(*cur) == 0
	runLen := rlw.RunningLength(*cur)
	if noLiterals && runLen == 0 {
		rlw.SetRunningBit(cur, v)
	}
	if noLiterals && rlw.RunningBit(*cur) == v && runLen < rlw.MaxRunningLength[W]() {
		rlw.SetRunningLength(cur, runLen+1)
		return
	}
	b.pushRLW()
	cur = b.rlw()
	rlw.SetRunningBit(cur, v)
	rlw.SetRunningLength(cur, 1)
}

func (b *Bitmap[W]) insertLiteralWord(w W) {
	n := rlw.LiteralWords(*b.rlw())
	if n >= rlw.MaxLiteralWords[W]() {
		b.pushRLW()
		rlw.SetLiteralWords(b.rlw(), 1)
		b.pushBack(w)
		return
	}
	rlw.SetLiteralWords(b.rlw(), n+1)
	b.pushBack(w)
}

func (b *Bitmap[W]) addLiteralStream(words []W, negate bool) {
	maxLit := rlw.MaxLiteralWords[W]()
	for len(words) > 0 {
		n := rlw.LiteralWords(*b.rlw())
		k := min(len(words), maxLit-n)
		rlw.SetLiteralWords(b.rlw(), n+k)
		b.pushBackWords(words[:k], negate)
		b.sizeInBits += k * wordBits[W]()
		words = words[k:]
		if len(words) > 0 {
			b.pushRLW()
		}
	}
}

// fastAddEmptyWords appends n uniform words without touching sizeInBits.
func (b *Bitmap[W]) fastAddEmptyWords(v bool, n int) {
	if n <= 0 {
		return
	}
	cur := b.rlw()
	if rlw.RunningBit(*cur) != v && rlw.Size(*cur) == 0 {
		rlw.SetRunningBit(cur, v)
	} else if rlw.LiteralWords(*cur) != 0 || rlw.RunningBit(*cur) != v {
		b.pushRLW()
		rlw.SetRunningBit(b.rlw(), v)
	}

	maxRun := rlw.MaxRunningLength[W]()
	remaining := uint64(n)
	runLen := rlw.RunningLength(*b.rlw())
	k := min(remaining, maxRun-runLen)
	rlw.SetRunningLength(b.rlw(), runLen+k)
	remaining -= k

	for remaining > 0 {
		k = min(remaining, maxRun)
		b.pushRLW()
		rlw.SetRunningBit(b.rlw(), v)
		rlw.SetRunningLength(b.rlw(), k)
		remaining -= k
	}
}

// AddWord appends one uncompressed word at the next word boundary.
// It implements Sink and never asks a merge to stop.
func (b *Bitmap[W]) AddWord(w W) bool {
	b.alignSize()
	b.addWord(w, wordBits[W]())
	return false
}

// AddStreamOfLiteralWords appends words verbatim, splitting them across
// control words as needed.
func (b *Bitmap[W]) AddStreamOfLiteralWords(words []W) bool {
	b.alignSize()
	b.addLiteralStream(words, false)
	return false
}

// AddStreamOfNegatedLiteralWords appends the complement of words.
func (b *Bitmap[W]) AddStreamOfNegatedLiteralWords(words []W) bool {
	b.alignSize()
	b.addLiteralStream(words, true)
	return false
}

// AddStreamOfEmptyWords appends n words that are all ones (v) or all zeros.
func (b *Bitmap[W]) AddStreamOfEmptyWords(v bool, n int) bool {
	if n <= 0 {
		return false
	}
	b.alignSize()
	b.sizeInBits += n * wordBits[W]()
	b.fastAddEmptyWords(v, n)
	return false
}

// Set sets the bit at position i.
//
// Bits must be set in increasing order: Set returns false and leaves the
// bitmap unchanged when i < SizeInBits. It panics with ErrIndexOutOfRange
// when i is negative or above MaxPosition.
func (b *Bitmap[W]) Set(i int) bool {
	limit := MaxPosition[W]()
	if i < 0 || i > limit {
		panic(indexOutOfRange(i, limit))
	}
	if i < b.sizeInBits {
		return false
	}

	w := wordBits[W]()
	dist := (i+w)/w - (b.sizeInBits+w-1)/w
	b.sizeInBits = i + 1
	bit := W(1) << (i % w)

	if dist > 0 {
		if dist > 1 {
			b.fastAddEmptyWords(false, dist-1)
		}
		b.insertLiteralWord(bit)
		return true
	}

	cur := b.rlw()
	if rlw.LiteralWords(*cur) == 0 {
		rlw.SetRunningLength(cur, rlw.RunningLength(*cur)-1)
		b.insertLiteralWord(bit)
		return true
	}

	*b.lastWord() |= bit
	b.foldLastLiteral()
	return true
}

// Get reports whether the bit at position i is set.
// It runs in time proportional to the number of control words.
func (b *Bitmap[W]) Get(i int) bool {
	if i < 0 || i >= b.sizeInBits {
		return false
	}
	w := wordBits[W]()
	target := i / w
	offset := 0
	for it := newRLWIterator(b); it.hasNext(); {
		cw, lits := it.next()
		run := int(rlw.RunningLength(cw))
		if target < offset+run {
			return rlw.RunningBit(cw)
		}
		offset += run
		if target < offset+len(lits) {
			return lits[target-offset]>>(i%w)&1 != 0
		}
		offset += len(lits)
	}
	return false
}

// foldLastLiteral turns a trailing literal that became uniform back into
// part of a run.
func (b *Bitmap[W]) foldLastLiteral() {
	n := rlw.LiteralWords(*b.rlw())
	if n == 0 {
		return
	}
	last := *b.lastWord()
	if last != 0 && last != allOnes[W]() {
		return
	}
	b.actualSizeInWords--
	rlw.SetLiteralWords(b.rlw(), n-1)
	b.insertEmptyWord(last != 0)
}

// previousRLW returns the position of the control word preceding the
// current one.
func (b *Bitmap[W]) previousRLW() int {
	prev := 0
	for pos := 0; pos < b.rlwPos; pos += 1 + rlw.LiteralWords(b.buffer[pos]) {
		prev = pos
	}
	return prev
}

// replaceLastRunWord converts the final word of the current run, which must
// be the last encoded word, into the literal w.
func (b *Bitmap[W]) replaceLastRunWord(w W) {
	cur := b.rlw()
	runLen := rlw.RunningLength(*cur) - 1
	rlw.SetRunningLength(cur, runLen)
	if runLen == 0 && rlw.LiteralWords(*cur) == 0 && b.rlwPos > 0 {
		b.rlwPos = b.previousRLW()
		b.actualSizeInWords--
	}
	b.insertLiteralWord(w)
}

// SetSizeInBitsWithinLastWord changes the logical size without changing the
// number of encoded words. Bits past the new size are cleared.
//
// It panics with ErrSizeCrossesWord when size falls in a different word than
// the current size; use SetSizeInBits to extend a bitmap.
func (b *Bitmap[W]) SetSizeInBitsWithinLastWord(size int) {
	w := wordBits[W]()
	if size < 0 || (size+w-1)/w != (b.sizeInBits+w-1)/w {
		panic(fmt.Errorf("%w: %d -> %d", ErrSizeCrossesWord, b.sizeInBits, size))
	}
	b.sizeInBits = size
	used := size % w
	if used == 0 {
		return
	}
	b.clearTrailingBits(used)
}

// clearTrailingBits clears every bit of the last encoded word above the
// lowest used bits.
func (b *Bitmap[W]) clearTrailingBits(used int) {
	mask := lowMask[W](used)
	cur := b.rlw()
	if rlw.LiteralWords(*cur) == 0 {
		if rlw.RunningLength(*cur) > 0 && rlw.RunningBit(*cur) {
			b.replaceLastRunWord(mask)
		}
		return
	}
	*b.lastWord() &= mask
	b.foldLastLiteral()
}

// SetSizeInBits extends the bitmap to size bits, filling the new positions
// with defaultValue. It returns false, without changes, when size does not
// exceed the current size.
func (b *Bitmap[W]) SetSizeInBits(size int, defaultValue bool) bool {
	if size <= b.sizeInBits {
		return false
	}
	if limit := MaxPosition[W]() + 1; size > limit {
		panic(indexOutOfRange(size, limit))
	}

	w := wordBits[W]()
	if used := b.sizeInBits % w; used != 0 {
		end := min(size, b.sizeInBits-used+w)
		if defaultValue {
			b.orLastWord(lowMask[W](end-b.sizeInBits+used) &^ lowMask[W](used))
		}
		b.sizeInBits = end
	}

	if whole := (size - b.sizeInBits) / w; whole > 0 {
		b.sizeInBits += whole * w
		b.fastAddEmptyWords(defaultValue, whole)
	}

	if rest := size - b.sizeInBits; rest > 0 {
		var last W
		if defaultValue {
			last = lowMask[W](rest)
		}
		b.addWord(last, rest)
	}
	return true
}

// orLastWord ORs mask into the last encoded word.
func (b *Bitmap[W]) orLastWord(mask W) {
	cur := b.rlw()
	if rlw.LiteralWords(*cur) > 0 {
		*b.lastWord() |= mask
		b.foldLastLiteral()
		return
	}
	if !rlw.RunningBit(*cur) && rlw.RunningLength(*cur) > 0 {
		b.replaceLastRunWord(mask)
	}
}

// Not complements every bit below SizeInBits in place.
func (b *Bitmap[W]) Not() {
	buf := b.words()
	for pos := 0; pos < len(buf); {
		rlw.SetRunningBit(&buf[pos], !rlw.RunningBit(buf[pos]))
		n := rlw.LiteralWords(buf[pos])
		for k := pos + 1; k <= pos+n; k++ {
			buf[k] = ^buf[k]
		}
		pos += 1 + n
	}
	if used := b.sizeInBits % wordBits[W](); used != 0 {
		b.clearTrailingBits(used)
	}
}

// Clear resets the bitmap to empty, keeping its buffer.
// It implements Sink.
func (b *Bitmap[W]) Clear() {
	b.sizeInBits = 0
	b.actualSizeInWords = 1
	b.rlwPos = 0
	b.ensureCapacity(1)
	b.buffer[0] = 0
}

// Trim releases unused buffer capacity.
func (b *Bitmap[W]) Trim() {
	b.buffer = slices.Clone(b.words())
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap[W]) Clone() *Bitmap[W] {
	return &Bitmap[W]{
		buffer:            slices.Clone(b.words()),
		actualSizeInWords: b.actualSizeInWords,
		rlwPos:            b.rlwPos,
		sizeInBits:        b.sizeInBits,
		maxWords:          b.maxWords,
	}
}

// Swap exchanges the contents of two bitmaps.
func (b *Bitmap[W]) Swap(other *Bitmap[W]) {
	*b, *other = *other, *b
}

// Cardinality returns the number of set bits.
func (b *Bitmap[W]) Cardinality() int {
	var c BitCounter[W]
	copyTo(b, &c)
	return c.Count()
}

// FirstSetBit returns the smallest set position, or -1 if none is set.
func (b *Bitmap[W]) FirstSetBit() int {
	w := wordBits[W]()
	offset := 0
	for it := newRLWIterator(b); it.hasNext(); {
		cw, lits := it.next()
		run := int(rlw.RunningLength(cw))
		if rlw.RunningBit(cw) && run > 0 {
			return offset * w
		}
		offset += run
		for _, lw := range lits {
			if lw != 0 {
				return offset*w + bits.TrailingZeros64(uint64(lw))
			}
			offset++
		}
	}
	return -1
}
