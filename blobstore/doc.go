// Package blobstore abstracts the storage of serialized bitmaps.
//
// A BlobStore holds immutable, named blobs. Writes replace a blob as a whole;
// reads go through a Blob handle with context-aware ranged reads.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral data
//   - LocalStore: local file system, atomic writes, mmap reads
//   - CachingStore: whole-blob LRU in front of another store
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Open returns an error satisfying errors.Is(err, ErrNotFound) for missing
// blobs. Delete of a missing blob succeeds. List returns names in ascending
// order.
package blobstore
