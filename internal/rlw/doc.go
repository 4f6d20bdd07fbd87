// Package rlw encodes and decodes EWAH control words ("running length words").
//
// A control word packs three fields into a single word:
//
//	bit 0              running bit (value of the uniform run)
//	bits 1..R          running length (number of uniform words, not stored)
//	bits R+1..W-1      literal word count (number of verbatim words that follow)
//
// R is half the word width: 32 for uint64 words and 16 for uint32 words.
// All functions are generic over the word width so the 32-bit and 64-bit
// layouts share one implementation. Overflowing either field panics; callers
// are expected to open a new control word instead.
package rlw
