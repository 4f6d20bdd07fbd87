package minio

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/ewah/blobstore"
	"github.com/hupe1980/ewah/blobstore/blobstoretest"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newTestClient connects to MINIO_ENDPOINT (default localhost:9000) and
// skips the test when no server answers.
func newTestClient(t *testing.T) (*minio.Client, string) {
	t.Helper()

	client, err := minio.New(envOr("MINIO_ENDPOINT", "localhost:9000"), &minio.Options{
		Creds:  credentials.NewStaticV4(envOr("MINIO_ACCESS_KEY", "minioadmin"), envOr("MINIO_SECRET_KEY", "minioadmin"), ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "test-ewah"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}
	return client, bucket
}

func TestStore_Integration(t *testing.T) {
	client, bucket := newTestClient(t)

	blobstoretest.Run(t, func(t *testing.T) blobstore.BlobStore {
		return NewStore(client, bucket, fmt.Sprintf("run-%d", time.Now().UnixNano()))
	})
}

func TestNewStore_Prefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"postings", "postings/"},
		{"/postings/", "postings/"},
	}
	for _, tt := range tests {
		s := NewStore(nil, "bucket", tt.in)
		assert.Equal(t, tt.want, s.prefix)
		assert.Equal(t, tt.want+"terms/a", s.key("terms/a"))
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}
