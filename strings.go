package ewah

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/ewah/internal/rlw"
)

// String returns the set positions in braces, for example "{1,2,3}".
func (b *Bitmap[W]) String() string {
	var sb strings.Builder
	buf := make([]byte, 0, 20)
	sb.WriteByte('{')
	first := true
	for it := b.Iterator(); it.HasNext(); {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		buf = strconv.AppendInt(buf[:0], int64(it.Next()), 10)
		sb.Write(buf)
	}
	sb.WriteByte('}')
	return sb.String()
}

// DebugString describes the encoded word stream, one control word per line.
func (b *Bitmap[W]) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ewah: words=%d bits=%d size=%d rlw=%d\n",
		b.actualSizeInWords, wordBits[W](), b.sizeInBits, b.rlwPos)
	for pos := 0; pos < b.actualSizeInWords; {
		cw := b.buffer[pos]
		n := rlw.LiteralWords(cw)
		fmt.Fprintf(&sb, "  @%d run(%d x %t) literals=%d\n",
			pos, rlw.RunningLength(cw), rlw.RunningBit(cw), n)
		for k := pos + 1; k <= pos+n && k < b.actualSizeInWords; k++ {
			fmt.Fprintf(&sb, "    %0*x\n", wordBits[W]()/4, uint64(b.buffer[k]))
		}
		pos += 1 + n
	}
	return sb.String()
}
