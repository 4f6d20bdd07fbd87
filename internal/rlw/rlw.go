package rlw

import (
	"fmt"
	"math/bits"
)

// Word is the set of unsigned integer types usable as EWAH words.
type Word interface {
	~uint32 | ~uint64
}

// Bits returns the width of W in bits.
func Bits[W Word]() int {
	return bits.OnesCount64(uint64(^W(0)))
}

// RunningLengthBits returns the number of bits holding the running length
// (32 for 64-bit words, 16 for 32-bit words).
func RunningLengthBits[W Word]() int {
	return Bits[W]() / 2
}

// LiteralBits returns the number of bits holding the literal word count
// (31 for 64-bit words, 15 for 32-bit words).
func LiteralBits[W Word]() int {
	return Bits[W]() - 1 - RunningLengthBits[W]()
}

// MaxRunningLength is the largest running length a single control word can hold.
func MaxRunningLength[W Word]() uint64 {
	return 1<<RunningLengthBits[W]() - 1
}

// MaxLiteralWords is the largest literal word count a single control word can hold.
func MaxLiteralWords[W Word]() int {
	return 1<<LiteralBits[W]() - 1
}

// RunningBit reports the bit value of the uniform run.
func RunningBit[W Word](w W) bool {
	return w&1 != 0
}

// SetRunningBit sets the bit value of the uniform run.
func SetRunningBit[W Word](w *W, b bool) {
	if b {
		*w |= 1
	} else {
		*w &^= 1
	}
}

// RunningLength returns the number of uniform words described by w.
func RunningLength[W Word](w W) uint64 {
	return uint64(w>>1) & MaxRunningLength[W]()
}

// SetRunningLength stores n as the running length of w.
// It panics if n exceeds MaxRunningLength.
func SetRunningLength[W Word](w *W, n uint64) {
	limit := MaxRunningLength[W]()
	if n > limit {
		panic(fmt.Sprintf("rlw: running length %d exceeds %d", n, limit))
	}
	*w = *w&^W(limit<<1) | W(n<<1)
}

// LiteralWords returns the number of literal words following w.
func LiteralWords[W Word](w W) int {
	return int(uint64(w) >> (1 + RunningLengthBits[W]()))
}

// SetLiteralWords stores n as the literal word count of w.
// It panics if n is negative or exceeds MaxLiteralWords.
func SetLiteralWords[W Word](w *W, n int) {
	limit := MaxLiteralWords[W]()
	if n < 0 || n > limit {
		panic(fmt.Sprintf("rlw: literal word count %d outside [0, %d]", n, limit))
	}
	shift := 1 + RunningLengthBits[W]()
	low := W(1)<<shift - 1
	*w = *w&low | W(uint64(n)<<shift)
}

// Size returns the total number of words (run plus literal) described by w.
func Size[W Word](w W) uint64 {
	return RunningLength(w) + uint64(LiteralWords(w))
}

// Make packs a control word from its three fields.
func Make[W Word](runningBit bool, runningLength uint64, literalWords int) W {
	var w W
	SetRunningBit(&w, runningBit)
	SetRunningLength(&w, runningLength)
	SetLiteralWords(&w, literalWords)
	return w
}
