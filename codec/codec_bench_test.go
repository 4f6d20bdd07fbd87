package codec

import (
	"testing"
)

func benchmarkMarshal(b *testing.B, opts Options) {
	b.Helper()
	b.ReportAllocs()

	bm := runBitmap(10)
	b.SetBytes(int64(bm.SerializedSizeInBytes()))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := Marshal(bm, opts)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkUnmarshal(b *testing.B, opts Options) {
	b.Helper()
	b.ReportAllocs()

	bm := runBitmap(10)
	data, err := Marshal(bm, opts)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(bm.SerializedSizeInBytes()))

	b.ResetTimer()
	for b.Loop() {
		if _, err := Unmarshal[uint64](data, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_Marshal(b *testing.B) {
	b.Run("none", func(b *testing.B) { benchmarkMarshal(b, Options{}) })
	b.Run("lz4", func(b *testing.B) { benchmarkMarshal(b, Options{Compression: CompressionLZ4}) })
	b.Run("zstd", func(b *testing.B) { benchmarkMarshal(b, Options{Compression: CompressionZstd}) })
}

func BenchmarkCodec_Unmarshal(b *testing.B) {
	b.Run("none", func(b *testing.B) { benchmarkUnmarshal(b, Options{}) })
	b.Run("lz4", func(b *testing.B) { benchmarkUnmarshal(b, Options{Compression: CompressionLZ4}) })
	b.Run("zstd", func(b *testing.B) { benchmarkUnmarshal(b, Options{Compression: CompressionZstd}) })
}
