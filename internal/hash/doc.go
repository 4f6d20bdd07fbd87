// Package hash provides the checksums used to protect stored bitmaps.
//
// # CRC32-Castagnoli (CRC32C)
//
// Envelopes written by the codec package carry a CRC32C of their payload.
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension).
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
