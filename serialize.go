package ewah

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/ewah/internal/conv"
	"github.com/hupe1980/ewah/internal/rlw"
)

// Serialized layout, all integers big-endian:
//
//	[int32 sizeInBits][int32 words][words × W][int32 rlwPosition]
//
// Words are written as int64 for 64-bit bitmaps and as int32 for 32-bit
// bitmaps, which matches the layout used by other EWAH implementations.
const (
	headerSize  = 8
	trailerSize = 4

	// ioChunkWords bounds the words encoded or decoded per read or write.
	ioChunkWords = 4096
)

// SerializedSizeInBytes returns the number of bytes WriteTo writes.
func (b *Bitmap[W]) SerializedSizeInBytes() int {
	return headerSize + len(b.stream())*wordBits[W]()/8 + trailerSize
}

// stream returns the words to serialize. A zero Bitmap is written as an
// empty bitmap with a single control word.
func (b *Bitmap[W]) stream() []W {
	if b.actualSizeInWords == 0 {
		return make([]W, 1)
	}
	return b.words()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Bitmap[W]) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(make([]byte, 0, b.SerializedSizeInBytes()))
}

// AppendBinary implements encoding.BinaryAppender.
func (b *Bitmap[W]) AppendBinary(dst []byte) ([]byte, error) {
	size, err := conv.IntToInt32(b.sizeInBits)
	if err != nil {
		return nil, fmt.Errorf("ewah: size in bits: %w", err)
	}
	stream := b.stream()
	words, err := conv.IntToInt32(len(stream))
	if err != nil {
		return nil, fmt.Errorf("ewah: word count: %w", err)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(size))
	dst = binary.BigEndian.AppendUint32(dst, uint32(words))
	dst = appendWords(dst, stream)
	dst = binary.BigEndian.AppendUint32(dst, uint32(b.rlwPos))
	return dst, nil
}

func appendWords[W Word](dst []byte, words []W) []byte {
	if wordBits[W]() == 64 {
		for _, w := range words {
			dst = binary.BigEndian.AppendUint64(dst, uint64(w))
		}
		return dst
	}
	for _, w := range words {
		dst = binary.BigEndian.AppendUint32(dst, uint32(w))
	}
	return dst
}

// WriteTo implements io.WriterTo.
func (b *Bitmap[W]) WriteTo(w io.Writer) (int64, error) {
	var written int64
	write := func(p []byte) error {
		n, err := w.Write(p)
		written += int64(n)
		return err
	}

	buf := make([]byte, 0, min(b.SerializedSizeInBytes(), headerSize+ioChunkWords*8))
	size, err := conv.IntToInt32(b.sizeInBits)
	if err != nil {
		return 0, fmt.Errorf("ewah: size in bits: %w", err)
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(size))
	words := b.stream()
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(words)))

	for len(words) > 0 {
		k := min(len(words), ioChunkWords)
		buf = appendWords(buf, words[:k])
		words = words[k:]
		if err := write(buf); err != nil {
			return written, err
		}
		buf = buf[:0]
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(b.rlwPos))
	if err := write(buf); err != nil {
		return written, err
	}
	return written, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes are
// rejected.
func (b *Bitmap[W]) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if _, err := b.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		return corrupt("trailingBytes", int64(r.Len()))
	}
	return nil
}

// ReadFrom implements io.ReaderFrom. It replaces the content of b.
//
// The input is treated as untrusted: header fields are validated before
// anything is allocated, the word stream must describe exactly the declared
// control-word position, and the word count may not exceed the maximum buffer
// size of b (ErrTooLarge). Malformed input yields an error wrapping
// ErrCorrupt and leaves b unchanged.
func (b *Bitmap[W]) ReadFrom(r io.Reader) (int64, error) {
	var read int64
	readFull := func(p []byte) error {
		n, err := io.ReadFull(r, p)
		read += int64(n)
		return err
	}

	var header [headerSize]byte
	if err := readFull(header[:]); err != nil {
		return read, &CorruptError{Field: "header", Value: read, cause: err}
	}
	size, err := conv.Int32ToCount(int32(binary.BigEndian.Uint32(header[0:4])))
	if err != nil {
		return read, &CorruptError{Field: "sizeInBits", Value: int64(int32(binary.BigEndian.Uint32(header[0:4]))), cause: err}
	}
	words, err := conv.Int32ToCount(int32(binary.BigEndian.Uint32(header[4:8])))
	if err != nil || words < 1 {
		return read, corrupt("words", int64(int32(binary.BigEndian.Uint32(header[4:8]))))
	}

	limit := b.limit()
	if words > limit {
		return read, fmt.Errorf("%w: %d words, limit %d", ErrTooLarge, words, limit)
	}
	encoded := wordsFor[W](size)
	if words > 2*encoded+1 {
		return read, corrupt("words", int64(words))
	}

	wordBytes := wordBits[W]() / 8
	buf := make([]W, 0, min(words, ioChunkWords))
	chunk := make([]byte, min(words, ioChunkWords)*wordBytes)
	for len(buf) < words {
		k := min(words-len(buf), ioChunkWords)
		p := chunk[:k*wordBytes]
		if err := readFull(p); err != nil {
			return read, &CorruptError{Field: "words", Value: int64(len(buf)), cause: err}
		}
		buf = slices.Grow(buf, k)
		for i := 0; i < k; i++ {
			if wordBytes == 8 {
				buf = append(buf, W(binary.BigEndian.Uint64(p[i*8:])))
			} else {
				buf = append(buf, W(binary.BigEndian.Uint32(p[i*4:])))
			}
		}
	}

	var trailer [trailerSize]byte
	if err := readFull(trailer[:]); err != nil {
		return read, &CorruptError{Field: "rlwPosition", Value: read, cause: err}
	}
	rlwPos := int64(int32(binary.BigEndian.Uint32(trailer[:])))

	last, described := 0, 0
	pos := 0
	for pos < words {
		last = pos
		described += int(rlw.Size(buf[pos]))
		pos += 1 + rlw.LiteralWords(buf[pos])
	}
	if pos != words {
		return read, corrupt("literalWords", int64(pos))
	}
	if int64(last) != rlwPos {
		return read, corrupt("rlwPosition", rlwPos)
	}
	if described > encoded {
		return read, corrupt("sizeInBits", int64(size))
	}

	nb := &Bitmap[W]{
		buffer:            buf,
		actualSizeInWords: words,
		rlwPos:            last,
		maxWords:          limit,
	}
	nb.normalize(size, described)
	*b = *nb
	return read, nil
}

// normalize restores the in-memory invariants on a decoded bitmap: the
// current control word covers at least one word when the bitmap is not empty,
// the word stream covers exactly size bits, and bits past size are zero.
func (b *Bitmap[W]) normalize(size, described int) {
	if b.rlwPos > 0 && rlw.Size(*b.rlw()) == 0 {
		b.actualSizeInWords = b.rlwPos
		b.rlwPos = b.previousRLW()
	}
	b.fastAddEmptyWords(false, wordsFor[W](size)-described)
	b.sizeInBits = size
	if used := size % wordBits[W](); used != 0 {
		b.clearTrailingBits(used)
	}
}
