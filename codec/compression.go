package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression of an envelope.
type Compression uint8

const (
	// CompressionNone stores the serialized bitmap as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (better ratio, good for cold data).
	CompressionZstd Compression = 2
)

// String returns the name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

const (
	// minSavings is the fraction a compressed payload must stay under for it
	// to be kept.
	minSavings = 0.9

	// maxLZ4Ratio bounds the expansion of an LZ4 block: one token byte plus
	// 255-byte length extensions per literal run.
	maxLZ4Ratio = 255

	// zstdMaxWindow is the largest window the encoder levels use. Frames
	// asking for more were not written by Encode.
	zstdMaxWindow = 8 << 20
)

// Encoder pools, one per zstd level.
var (
	zstdEncoderPools [zstd.SpeedBestCompression + 1]sync.Pool
	zstdDecoderPool  sync.Pool
	lz4Pool          = sync.Pool{New: func() any { return new(lz4.Compressor) }}
)

func zstdLevel(level int) zstd.EncoderLevel {
	if level <= 0 {
		return zstd.SpeedDefault
	}
	return zstd.EncoderLevelFromZstd(level)
}

func getZstdEncoder(level zstd.EncoderLevel) (*zstd.Encoder, error) {
	if v := zstdEncoderPools[level].Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
}

func putZstdEncoder(level zstd.EncoderLevel, enc *zstd.Encoder) {
	zstdEncoderPools[level].Put(enc)
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxWindow(zstdMaxWindow))
}

func putZstdDecoder(dec *zstd.Decoder) {
	_ = dec.Reset(nil) // drop the payload reference
	zstdDecoderPool.Put(dec)
}

// compress returns the compressed form of raw, or nil when it is not worth
// keeping.
func compress(raw []byte, c Compression, level int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var out []byte
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		comp := lz4Pool.Get().(*lz4.Compressor)
		n, err := comp.CompressBlock(raw, dst)
		lz4Pool.Put(comp)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		out = dst[:n]
	case CompressionZstd:
		lvl := zstdLevel(level)
		enc, err := getZstdEncoder(lvl)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		out = enc.EncodeAll(raw, nil)
		putZstdEncoder(lvl, enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	if float64(len(out)) > float64(len(raw))*minSavings {
		return nil, nil
	}
	return out, nil
}

// decompress expands payload into exactly rawLen bytes.
func decompress(payload []byte, c Compression, rawLen int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return payload, nil
	case CompressionLZ4:
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorrupt, n, rawLen)
		}
		return out, nil
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer putZstdDecoder(dec)

		if err := dec.Reset(bytes.NewReader(payload)); err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		// rawLen comes from the header: the buffer grows with the decoded
		// output and reading stops one byte past the declared length.
		buf := bytes.NewBuffer(make([]byte, 0, min(rawLen, 4*len(payload))))
		n, err := buf.ReadFrom(io.LimitReader(dec, int64(rawLen)+1))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if n > int64(rawLen) {
			return nil, fmt.Errorf("%w: zstd output exceeds %d bytes", ErrCorrupt, rawLen)
		}
		if n != int64(rawLen) {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorrupt, n, rawLen)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}
