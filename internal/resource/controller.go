package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent blob operations.
	// If 0, defaults to 1.
	MaxWorkers int64

	// IOLimitBytesPerSec is the maximum I/O throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller bounds worker concurrency and I/O throughput.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted
	active  atomic.Int64

	ioLimiter *rate.Limiter
	ioBytes   atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// MaxWorkers returns the configured worker limit.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxWorkers)
}

// AcquireWorker reserves a worker slot, blocking while all are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	c.workers.Release(1)
}

// ActiveWorkers returns the number of reserved worker slots.
func (c *Controller) ActiveWorkers() int {
	if c == nil {
		return 0
	}
	return int(c.active.Load())
}

// AcquireIO waits until the I/O limit allows n bytes. Requests larger than
// one second of throughput are admitted in several steps.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.ioLimiter != nil {
		burst := c.ioLimiter.Burst()
		for rest := n; rest > 0; {
			step := min(rest, burst)
			if err := c.ioLimiter.WaitN(ctx, step); err != nil {
				return err
			}
			rest -= step
		}
	}
	c.ioBytes.Add(int64(n))
	return nil
}

// IOBytes returns the total bytes admitted by AcquireIO.
func (c *Controller) IOBytes() int64 {
	if c == nil {
		return 0
	}
	return c.ioBytes.Load()
}
