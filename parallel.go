package ewah

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// OrParallel computes the union of bitmaps with up to workers goroutines.
// Each worker folds a contiguous share of the operands; the partial results
// are folded once more on the calling goroutine.
//
// workers <= 0 uses GOMAXPROCS. The operands are only read.
func (a *Aggregator[W]) OrParallel(ctx context.Context, workers int, bitmaps ...*Bitmap[W]) (*Bitmap[W], error) {
	return a.parallel(ctx, opOr, workers, bitmaps)
}

// XorParallel computes the symmetric difference of bitmaps with up to workers
// goroutines.
func (a *Aggregator[W]) XorParallel(ctx context.Context, workers int, bitmaps ...*Bitmap[W]) (*Bitmap[W], error) {
	return a.parallel(ctx, opXor, workers, bitmaps)
}

func (a *Aggregator[W]) parallel(ctx context.Context, op boolOp, workers int, bitmaps []*Bitmap[W]) (*Bitmap[W], error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	// Each share needs at least two operands to be worth a goroutine.
	workers = min(workers, len(bitmaps)/2)
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := a.newOutput()
		a.fold(op, Sink[W](out), bitmaps)
		return out, nil
	}

	partials := make([]*Bitmap[W], workers)
	share := (len(bitmaps) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		lo := i * share
		hi := min(lo+share, len(bitmaps))
		if lo >= hi {
			partials[i] = a.newOutput()
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := a.newOutput()
			a.fold(op, Sink[W](out), bitmaps[lo:hi])
			partials[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := a.newOutput()
	a.fold(op, Sink[W](out), partials)
	return out, nil
}

// OrParallel computes the union of bitmaps with default options.
func OrParallel[W Word](ctx context.Context, workers int, bitmaps ...*Bitmap[W]) (*Bitmap[W], error) {
	return NewAggregator[W]().OrParallel(ctx, workers, bitmaps...)
}

// XorParallel computes the symmetric difference of bitmaps with default
// options.
func XorParallel[W Word](ctx context.Context, workers int, bitmaps ...*Bitmap[W]) (*Bitmap[W], error) {
	return NewAggregator[W]().XorParallel(ctx, workers, bitmaps...)
}
