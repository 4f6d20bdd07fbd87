package blobstore

import (
	"context"
	"sync"

	"github.com/hupe1980/ewah/internal/cache"
	"github.com/hupe1980/ewah/internal/hash"
)

// genStripes is the number of write generation counters. Names sharing a
// stripe only cost each other cache fills.
const genStripes = 64

// CachingStore wraps a BlobStore and keeps recently opened blobs in memory.
// Blobs are cached whole; writes and deletes through the store invalidate
// the cached copy.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU

	// mu orders cache fills against invalidations. A read-through fill is
	// dropped when a write to the same stripe started after the read did.
	mu   sync.Mutex
	gens [genStripes]uint64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Bytes     int64
	Entries   int
}

// NewCachingStore creates a CachingStore holding at most capacityBytes of
// blob content.
func NewCachingStore(inner BlobStore, capacityBytes int64) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacityBytes),
	}
}

// Open returns the cached blob or reads it through from the inner store.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data, ok := s.cache.Get(name); ok {
		return &memoryBlob{data: data}, nil
	}

	stripe := stripeOf(name)
	s.mu.Lock()
	gen := s.gens[stripe]
	s.mu.Unlock()

	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := ReadAll(ctx, b)
	if cerr := b.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gens[stripe] == gen {
		s.cache.Set(name, data)
	}
	s.mu.Unlock()
	return &memoryBlob{data: data}, nil
}

// Put invalidates the cached copy and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	defer s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the cached copy and deletes from the inner store.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	defer s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// invalidate drops the cached copy of name and fails fills of reads that
// started before. Writers call it before and after the inner write: the
// first call covers reads overlapping the write, the second those that
// finished while it ran.
func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	s.gens[stripeOf(name)]++
	s.cache.Remove(name)
	s.mu.Unlock()
}

func stripeOf(name string) int {
	return int(hash.CRC32C([]byte(name)) % genStripes)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Invalidate drops every cached blob whose name starts with prefix. Use it
// after the inner store was changed by another writer.
func (s *CachingStore) Invalidate(prefix string) {
	s.mu.Lock()
	for i := range s.gens {
		s.gens[i]++
	}
	s.cache.RemovePrefix(prefix)
	s.mu.Unlock()
}

// Stats returns the cache statistics.
func (s *CachingStore) Stats() CacheStats {
	hits, misses, evictions := s.cache.Stats()
	return CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		Bytes:     s.cache.Size(),
		Entries:   s.cache.Len(),
	}
}
