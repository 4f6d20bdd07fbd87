// Package postings stores named EWAH bitmaps, such as the posting lists of
// an inverted index, in a blobstore.BlobStore.
//
// Each bitmap is framed by package codec (checksummed, optionally LZ4 or
// zstd compressed) and written to its own blob. Queries load their operands
// concurrently and combine them with the ewah aggregation functions.
//
// # Usage
//
//	store, err := postings.Open[uint64](ctx, blobstore.NewLocalStore("/var/lib/idx"))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Save(ctx, "lang:go", goDocs)
//	_ = store.Save(ctx, "topic:db", dbDocs)
//
//	both, err := store.Intersect(ctx, "lang:go", "topic:db")
//
// # Catalog
//
// Commit writes a catalog blob listing every bitmap with its cardinality,
// size and checksum, then points the CURRENT blob at it. Open loads the
// committed catalog. Wrapping the blob store in s3.DDBCommitStore makes the
// CURRENT update a conditional write, so concurrent committers cannot lose
// each other's catalogs silently.
//
// # Concurrency
//
// A Store is safe for concurrent use. Bulk operations are bounded by
// WithConcurrency and, optionally, by an I/O rate limit (WithIORate).
package postings
