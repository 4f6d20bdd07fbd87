package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/internal/conv"
	"github.com/hupe1980/ewah/internal/hash"
)

const (
	magic = "EWAH"

	// Version is the envelope format version written by Encode.
	Version = 1

	// HeaderSize is the size of the envelope header in bytes.
	HeaderSize = 20
)

var (
	// ErrBadMagic is returned when the input does not start with the envelope magic.
	ErrBadMagic = errors.New("codec: bad magic")

	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("codec: checksum mismatch")

	// ErrUnsupportedVersion is returned for envelopes written by a newer format.
	ErrUnsupportedVersion = errors.New("codec: unsupported version")

	// ErrWordWidthMismatch is returned when an envelope holds a bitmap of
	// another word width than requested.
	ErrWordWidthMismatch = errors.New("codec: word width mismatch")

	// ErrUnknownCompression is returned for unknown compression identifiers.
	ErrUnknownCompression = errors.New("codec: unknown compression")

	// ErrCorrupt is returned for truncated or inconsistent envelopes.
	ErrCorrupt = errors.New("codec: corrupt envelope")

	// ErrTooLarge is returned when the decoded payload would exceed
	// Options.MaxRawSize.
	ErrTooLarge = errors.New("codec: payload too large")
)

// Options configures envelope encoding and decoding.
type Options struct {
	// Compression of the payload. Zero value stores it raw.
	Compression Compression

	// Level is the zstd level (1-22); 0 selects the default. LZ4 ignores it.
	Level int

	// MaxRawSize bounds the decompressed payload accepted by Decode.
	// 0 means no bound beyond the 32-bit length field.
	MaxRawSize int
}

// DefaultOptions compresses with LZ4.
var DefaultOptions = Options{Compression: CompressionLZ4}

// Header is the decoded envelope header.
type Header struct {
	Version     uint8
	WordWidth   int
	Compression Compression
	PayloadLen  int
	RawLen      int
	Checksum    uint32
}

// Encode wraps raw, the serialization of a bitmap over words of wordWidth
// bits, in an envelope.
func Encode(raw []byte, wordWidth int, opts Options) ([]byte, error) {
	if wordWidth != 32 && wordWidth != 64 {
		return nil, fmt.Errorf("codec: word width %d: %w", wordWidth, ErrWordWidthMismatch)
	}
	rawLen, err := conv.IntToUint32(len(raw))
	if err != nil {
		return nil, fmt.Errorf("codec: raw length: %w", err)
	}

	payload, err := compress(raw, opts.Compression, opts.Level)
	if err != nil {
		return nil, err
	}
	c := opts.Compression
	if payload == nil {
		payload, c = raw, CompressionNone
	}

	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(out, magic)
	out[4] = Version
	out[5] = byte(wordWidth)
	out[6] = byte(c)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[12:], rawLen)
	binary.LittleEndian.PutUint32(out[16:], hash.CRC32C(payload))
	return append(out, payload...), nil
}

// ParseHeader validates and returns the envelope header of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrCorrupt, len(data), HeaderSize)
	}
	if string(data[:4]) != magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Version:     data[4],
		WordWidth:   int(data[5]),
		Compression: Compression(data[6]),
		Checksum:    binary.LittleEndian.Uint32(data[16:]),
	}
	if h.Version == 0 || h.Version > Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.WordWidth != 32 && h.WordWidth != 64 {
		return Header{}, fmt.Errorf("%w: width %d", ErrCorrupt, h.WordWidth)
	}
	if h.Compression > CompressionZstd {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(h.Compression))
	}
	var err error
	if h.PayloadLen, err = conv.Uint32ToInt(binary.LittleEndian.Uint32(data[8:])); err != nil {
		return Header{}, fmt.Errorf("%w: payload length: %w", ErrCorrupt, err)
	}
	if h.RawLen, err = conv.Uint32ToInt(binary.LittleEndian.Uint32(data[12:])); err != nil {
		return Header{}, fmt.Errorf("%w: raw length: %w", ErrCorrupt, err)
	}
	if h.Compression == CompressionNone && h.PayloadLen != h.RawLen {
		return Header{}, fmt.Errorf("%w: raw payload of %d bytes declares %d", ErrCorrupt, h.PayloadLen, h.RawLen)
	}
	if h.Compression == CompressionLZ4 && h.RawLen > h.PayloadLen*maxLZ4Ratio {
		return Header{}, fmt.Errorf("%w: lz4 payload of %d bytes cannot expand to %d", ErrCorrupt, h.PayloadLen, h.RawLen)
	}
	return h, nil
}

// Decode validates an envelope and returns its header and the serialized
// bitmap it carries.
func Decode(data []byte, opts Options) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if len(data)-HeaderSize != h.PayloadLen {
		return Header{}, nil, fmt.Errorf("%w: payload is %d bytes, header declares %d", ErrCorrupt, len(data)-HeaderSize, h.PayloadLen)
	}
	if opts.MaxRawSize > 0 && h.RawLen > opts.MaxRawSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, h.RawLen, opts.MaxRawSize)
	}
	payload := data[HeaderSize:]
	if got := hash.CRC32C(payload); got != h.Checksum {
		return Header{}, nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksum, got, h.Checksum)
	}
	raw, err := decompress(payload, h.Compression, h.RawLen)
	if err != nil {
		return Header{}, nil, err
	}
	return h, raw, nil
}

// Marshal serializes b and wraps it in an envelope.
func Marshal[W ewah.Word](b *ewah.Bitmap[W], opts Options) ([]byte, error) {
	raw, err := b.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return Encode(raw, wordWidth[W](), opts)
}

// Unmarshal decodes an envelope written by Marshal. The envelope must hold a
// bitmap over words of type W. bitmapOpts configure the returned bitmap, for
// example its maximum buffer size.
func Unmarshal[W ewah.Word](data []byte, opts Options, bitmapOpts ...ewah.Option) (*ewah.Bitmap[W], error) {
	h, raw, err := Decode(data, opts)
	if err != nil {
		return nil, err
	}
	if want := wordWidth[W](); h.WordWidth != want {
		return nil, fmt.Errorf("%w: envelope holds %d-bit words, want %d", ErrWordWidthMismatch, h.WordWidth, want)
	}
	b := ewah.NewBitmap[W](bitmapOpts...)
	if err := b.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return b, nil
}

func wordWidth[W ewah.Word]() int {
	var w W
	w = ^w
	if uint64(w) == 1<<32-1 {
		return 32
	}
	return 64
}
