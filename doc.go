// Package ewah provides EWAH (Enhanced Word-Aligned Hybrid) compressed
// bitmaps for Go.
//
// A Bitmap stores a bit vector as a stream of words. Runs of all-zero or
// all-one words collapse into a count held by a control word, and everything
// else is kept verbatim as literal words. Boolean algebra runs directly on the
// compressed form, so its cost follows the compressed size rather than the
// number of bits. This makes EWAH a good fit for sorted row ids and posting
// lists in index and search workloads.
//
// # Quick Start
//
//	a := ewah.BitmapOf(0, 2, 55, 64, 1<<30)
//	b := ewah.BitmapOf(1, 3, 64, 1<<30)
//
//	both := a.And(b)               // {64,1073741824}
//	n := a.OrCardinality(b)        // counted without building the union
//	for pos := range both.All() {  // ascending set positions
//	    fmt.Println(pos)
//	}
//
// Bits are appended in increasing order: Set(i) with i below SizeInBits
// returns false and leaves the bitmap unchanged.
//
// # Word Width
//
// Bitmap is generic over its word type. Bitmap64 (Bitmap[uint64]) is the
// default; Bitmap32 compresses at a finer granularity with smaller control
// words. Operands of one operation must share the word type.
//
// # Sinks
//
// Every merge writes through a Sink. A *Bitmap is a Sink. BitCounter only
// counts set bits:
//
//	var c ewah.BitCounter[uint64]
//	a.AndTo(b, &c)
//
// # Many Operands
//
// Aggregator combines many bitmaps at once:
//
//	agg := ewah.NewAggregator[uint64]()
//	union := agg.Or(bitmaps...)
//	atLeastTwo := agg.Threshold(2, bitmaps...)
//	parity := agg.Symmetric(func(ones, n int) bool { return ones%2 == 1 }, bitmaps...)
//
// OR and XOR switch between a pooled dense window and a pairwise fold based on
// how well the operands compress (see WithDenseRatio).
//
// # Serialization
//
// WriteTo/ReadFrom and MarshalBinary/UnmarshalBinary use the portable
// big-endian EWAH layout:
//
//	[int32 sizeInBits][int32 words][words][int32 rlwPosition]
//
// Decoding validates untrusted input before allocating. The codec package
// adds a checksummed, optionally compressed envelope, and the postings package
// stores named bitmaps in a blobstore.
//
// # Concurrency
//
// A bitmap that is no longer mutated may be read from many goroutines: merges
// and iterators only read their operands. Mutation requires external
// synchronization.
//
// # Errors
//
// Precondition violations panic with an error wrapping ErrIndexOutOfRange,
// ErrSizeCrossesWord or ErrBufferOverflow. Malformed
// serialized input returns an error wrapping ErrCorrupt or ErrTooLarge.
package ewah
