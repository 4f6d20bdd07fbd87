// Package codec frames serialized bitmaps for storage and encodes the
// metadata stored next to them.
//
// # Envelope
//
// Marshal wraps the portable EWAH serialization of a bitmap in a small
// envelope:
//
//	magic "EWAH" | version | word width | compression | reserved |
//	payload length u32 | raw length u32 | crc32c u32 | payload
//
// All header integers are little-endian. The payload is the serialized bitmap,
// optionally compressed with LZ4 or Zstandard. When compression does not save
// at least 10% the payload is stored raw, so decoding never depends on the
// configured compression.
//
// # Metadata
//
// Codec encodes catalog and other metadata values. JSON uses the standard
// library; GoJSON (the Default) uses github.com/goccy/go-json. Changing the
// codec is a breaking change for already persisted metadata.
package codec
