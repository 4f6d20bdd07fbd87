// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("postings/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	idx, err := postings.Open[uint64](ctx, store)
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checked single-request puts, multipart uploads for large blobs
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - DDBCommitStore: DynamoDB conditional writes for the CURRENT pointer
package s3
