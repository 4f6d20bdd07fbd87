// Package conv provides checked integer conversions.
//
// They guard the fixed-width fields of serialized bitmaps and framed blobs:
// counts read from untrusted input and sizes written into int32/uint32
// headers.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead.
package conv
