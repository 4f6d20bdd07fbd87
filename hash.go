package ewah

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Hash64 returns a 64-bit hash of the set positions of b.
//
// The hash only depends on the set positions, so bitmaps that are Equals hash
// the same even when their sizes in bits or word types differ.
func (b *Bitmap[W]) Hash64() uint64 {
	buf := make([]byte, 0, 16*min(b.actualSizeInWords, 1024))
	b.forEachOneSpan(func(start, n int) {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(start))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n))
	})
	return xxh3.Hash(buf)
}
