package postings

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/blobstore"
	"github.com/hupe1980/ewah/codec"
	"github.com/hupe1980/ewah/internal/resource"
	"golang.org/x/sync/errgroup"
)

// parallelUnionOperands is the operand count from which Union merges in
// parallel.
const parallelUnionOperands = 32

// Store keeps named bitmaps over words of type W in a blob store.
type Store[W ewah.Word] struct {
	blobs  blobstore.BlobStore
	opts   Options
	ctrl   *resource.Controller
	agg    *ewah.Aggregator[W]
	logger *ewah.Logger

	mu      sync.RWMutex
	entries map[string]Entry
	closed  atomic.Bool
}

// Open returns a Store over blobs. The committed catalog, if any, seeds the
// entries reported by Entries.
func Open[W ewah.Word](ctx context.Context, blobs blobstore.BlobStore, optFns ...Option) (*Store[W], error) {
	opts := applyOptions(optFns)
	s := &Store[W]{
		blobs: blobs,
		opts:  opts,
		ctrl: resource.NewController(resource.Config{
			MaxWorkers:         int64(opts.Concurrency),
			IOLimitBytesPerSec: opts.IORate,
		}),
		agg:     ewah.NewAggregator[W](slices.Concat(opts.BitmapOptions, []ewah.Option{ewah.WithLogger(opts.Logger)})...),
		logger:  opts.Logger,
		entries: make(map[string]Entry),
	}

	cat, err := s.Catalog(ctx)
	switch {
	case errors.Is(err, ErrNoCatalog):
	case err != nil:
		return nil, err
	default:
		if want := wordWidth[W](); cat.WordWidth != want {
			return nil, fmt.Errorf("%w: catalog holds %d-bit bitmaps, want %d", codec.ErrWordWidthMismatch, cat.WordWidth, want)
		}
		for _, e := range cat.Entries {
			s.entries[e.Name] = e
		}
	}
	return s, nil
}

// Close marks the store closed. The blob store is not closed.
func (s *Store[W]) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Store[W]) checkOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (s *Store[W]) check(name string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return ValidateName(name)
}

func (s *Store[W]) bitmapKey(name string) string {
	return s.opts.Prefix + bitmapDir + name
}

// Save encodes b and stores it under name, replacing any previous bitmap.
func (s *Store[W]) Save(ctx context.Context, name string, b *ewah.Bitmap[W]) (err error) {
	if err := s.check(name); err != nil {
		return err
	}

	start := time.Now()
	var size int
	defer func() {
		s.opts.Metrics.RecordSave(size, time.Since(start), err)
		s.logger.LogSave(ctx, name, size, err)
	}()

	data, err := codec.Marshal(b, s.opts.Envelope)
	if err != nil {
		return fmt.Errorf("postings: encode %q: %w", name, err)
	}
	h, err := codec.ParseHeader(data)
	if err != nil {
		return err
	}
	if err := s.ctrl.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, s.bitmapKey(name), data); err != nil {
		return fmt.Errorf("postings: save %q: %w", name, err)
	}
	size = len(data)

	s.mu.Lock()
	s.entries[name] = Entry{
		Name:        name,
		Cardinality: b.Cardinality(),
		SizeInBits:  b.SizeInBits(),
		Bytes:       len(data),
		Compression: h.Compression.String(),
		Checksum:    h.Checksum,
	}
	s.mu.Unlock()
	return nil
}

// Load reads the bitmap stored under name. Missing bitmaps yield an error
// matching blobstore.ErrNotFound.
func (s *Store[W]) Load(ctx context.Context, name string) (_ *ewah.Bitmap[W], err error) {
	if err := s.check(name); err != nil {
		return nil, err
	}

	start := time.Now()
	var size int
	defer func() {
		s.opts.Metrics.RecordLoad(size, time.Since(start), err)
		s.logger.LogLoad(ctx, name, size, err)
	}()

	blob, err := s.blobs.Open(ctx, s.bitmapKey(name))
	if err != nil {
		return nil, fmt.Errorf("postings: load %q: %w", name, err)
	}
	defer blob.Close()

	if err := s.ctrl.AcquireIO(ctx, int(blob.Size())); err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("postings: read %q: %w", name, err)
	}
	size = len(data)

	b, err := codec.Unmarshal[W](data, s.opts.Envelope, s.opts.BitmapOptions...)
	if err != nil {
		return nil, fmt.Errorf("postings: decode %q: %w", name, err)
	}
	return b, nil
}

// Delete removes the bitmap stored under name. Deleting a missing bitmap is
// not an error.
func (s *Store[W]) Delete(ctx context.Context, name string) error {
	if err := s.check(name); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, s.bitmapKey(name)); err != nil {
		return fmt.Errorf("postings: delete %q: %w", name, err)
	}

	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
	return nil
}

// List returns the names of all stored bitmaps in ascending order.
func (s *Store[W]) List(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	prefix := s.bitmapKey("")
	keys, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name := strings.TrimPrefix(k, prefix); ValidateName(name) == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

// Entries returns the entries known to this store, sorted by name: those of
// the catalog loaded by Open plus later saves, minus deletes.
func (s *Store[W]) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Values(s.entries))
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// SaveMany saves all bitmaps concurrently. Every save is attempted; the
// returned error joins the failures.
func (s *Store[W]) SaveMany(ctx context.Context, bitmaps map[string]*ewah.Bitmap[W]) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	start := time.Now()
	names := slices.Sorted(maps.Keys(bitmaps))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(s.ctrl.MaxWorkers())
	for i, name := range names {
		g.Go(func() error {
			if err := s.ctrl.AcquireWorker(ctx); err != nil {
				errs[i] = err
				return nil
			}
			defer s.ctrl.ReleaseWorker()

			errs[i] = s.Save(ctx, name, bitmaps[name])
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	s.opts.Metrics.RecordBulk(len(names), failed, time.Since(start))
	s.logger.LogBulk(ctx, "save", len(names), failed)
	return errors.Join(errs...)
}

// LoadMany loads the named bitmaps concurrently, in the order given. It
// stops at the first failure.
func (s *Store[W]) LoadMany(ctx context.Context, names []string) ([]*ewah.Bitmap[W], error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	start := time.Now()
	out := make([]*ewah.Bitmap[W], len(names))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.ctrl.MaxWorkers())
	for i, name := range names {
		g.Go(func() error {
			if err := s.ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer s.ctrl.ReleaseWorker()

			b, err := s.Load(gctx, name)
			if err != nil {
				failed.Add(1)
				return err
			}
			out[i] = b
			return nil
		})
	}
	err := g.Wait()

	s.opts.Metrics.RecordBulk(len(names), int(failed.Load()), time.Since(start))
	s.logger.LogBulk(ctx, "load", len(names), int(failed.Load()))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Intersect returns the bitmap of positions set in every named bitmap.
func (s *Store[W]) Intersect(ctx context.Context, names ...string) (*ewah.Bitmap[W], error) {
	return s.query(ctx, "and", names, func(bitmaps []*ewah.Bitmap[W]) (*ewah.Bitmap[W], error) {
		return s.agg.And(bitmaps...), nil
	})
}

// Union returns the bitmap of positions set in any named bitmap.
func (s *Store[W]) Union(ctx context.Context, names ...string) (*ewah.Bitmap[W], error) {
	return s.query(ctx, "or", names, func(bitmaps []*ewah.Bitmap[W]) (*ewah.Bitmap[W], error) {
		if len(bitmaps) >= parallelUnionOperands {
			return s.agg.OrParallel(ctx, s.ctrl.MaxWorkers(), bitmaps...)
		}
		return s.agg.Or(bitmaps...), nil
	})
}

// Threshold returns the bitmap of positions set in at least t named bitmaps.
func (s *Store[W]) Threshold(ctx context.Context, t int, names ...string) (*ewah.Bitmap[W], error) {
	return s.query(ctx, "threshold", names, func(bitmaps []*ewah.Bitmap[W]) (*ewah.Bitmap[W], error) {
		return s.agg.Threshold(t, bitmaps...), nil
	})
}

// Difference returns the positions of the bitmap stored under name that are
// set in none of the excluded bitmaps.
func (s *Store[W]) Difference(ctx context.Context, name string, exclude ...string) (*ewah.Bitmap[W], error) {
	names := append([]string{name}, exclude...)
	return s.query(ctx, "andnot", names, func(bitmaps []*ewah.Bitmap[W]) (*ewah.Bitmap[W], error) {
		if len(bitmaps) == 1 {
			return bitmaps[0], nil
		}
		return bitmaps[0].AndNot(s.agg.Or(bitmaps[1:]...)), nil
	})
}

func (s *Store[W]) query(ctx context.Context, op string, names []string, eval func([]*ewah.Bitmap[W]) (*ewah.Bitmap[W], error)) (_ *ewah.Bitmap[W], err error) {
	start := time.Now()
	defer func() {
		s.opts.Metrics.RecordQuery(op, len(names), time.Since(start), err)
	}()

	if len(names) == 0 {
		return nil, ErrNoOperands
	}
	bitmaps, err := s.LoadMany(ctx, names)
	if err != nil {
		return nil, err
	}
	return eval(bitmaps)
}

// Commit writes a catalog of the current entries and points CURRENT at it.
// It returns the catalog blob name.
func (s *Store[W]) Commit(ctx context.Context) (_ string, err error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}

	start := time.Now()
	cat := &Catalog{
		Version:   CatalogVersion,
		CreatedAt: start.UTC(),
		WordWidth: wordWidth[W](),
		Entries:   s.Entries(),
	}
	name := fmt.Sprintf("%s%020d.json", catalogPrefix, start.UnixNano())
	defer func() {
		s.opts.Metrics.RecordCommit(len(cat.Entries), time.Since(start), err)
		s.logger.LogCommit(ctx, name, len(cat.Entries), err)
	}()

	data, err := s.opts.Codec.Marshal(cat)
	if err != nil {
		return "", fmt.Errorf("postings: encode catalog: %w", err)
	}
	if err := s.blobs.Put(ctx, s.opts.Prefix+name, data); err != nil {
		return "", fmt.Errorf("postings: write catalog: %w", err)
	}
	if err := s.blobs.Put(ctx, s.opts.Prefix+CurrentName, []byte(name)); err != nil {
		return "", fmt.Errorf("postings: update %s: %w", CurrentName, err)
	}
	return name, nil
}

// Catalog reads the committed catalog. It returns ErrNoCatalog before the
// first commit.
func (s *Store[W]) Catalog(ctx context.Context) (*Catalog, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	name, err := s.currentCatalog(ctx)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNoCatalog
		}
		return nil, err
	}
	if !strings.HasPrefix(name, catalogPrefix) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("postings: %s names %q, not a catalog", CurrentName, name)
	}

	data, err := s.readBlob(ctx, s.opts.Prefix+name)
	if err != nil {
		return nil, fmt.Errorf("postings: read catalog %s: %w", name, err)
	}
	var cat Catalog
	if err := s.opts.Codec.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("postings: decode catalog %s: %w", name, err)
	}
	if cat.Version < 1 || cat.Version > CatalogVersion {
		return nil, fmt.Errorf("postings: catalog %s has unsupported version %d", name, cat.Version)
	}
	return &cat, nil
}

// PruneCatalogs deletes all but the newest keep catalogs. The catalog named
// by CURRENT is always kept. It returns the number of deleted catalogs.
func (s *Store[W]) PruneCatalogs(ctx context.Context, keep int) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	current, err := s.currentCatalog(ctx)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return 0, err
	}
	keys, err := s.blobs.List(ctx, s.opts.Prefix+catalogPrefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i, key := range keys {
		if i >= len(keys)-keep || key == s.opts.Prefix+current {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// currentCatalog returns the catalog name stored in CURRENT.
func (s *Store[W]) currentCatalog(ctx context.Context) (string, error) {
	data, err := s.readBlob(ctx, s.opts.Prefix+CurrentName)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store[W]) readBlob(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.blobs.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	return blobstore.ReadAll(ctx, blob)
}

func wordWidth[W ewah.Word]() int {
	var w W
	w = ^w
	if uint64(w) == 1<<32-1 {
		return 32
	}
	return 64
}

func invalidName(name string) error {
	return fmt.Errorf("%w: %q", ErrInvalidName, name)
}
