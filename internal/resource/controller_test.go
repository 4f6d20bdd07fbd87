package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.MaxWorkers())

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))
	assert.Equal(t, 2, c.ActiveWorkers())

	c.ReleaseWorker()
	assert.Equal(t, 1, c.ActiveWorkers())
	c.ReleaseWorker()
	assert.Equal(t, 0, c.ActiveWorkers())
}

func TestController_WorkerBlocksUntilCancelled(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, 1, c.MaxWorkers())
	require.NoError(t, c.AcquireWorker(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, c.ActiveWorkers())
}

func TestController_BoundsConcurrency(t *testing.T) {
	c := NewController(Config{MaxWorkers: 3})

	var (
		mu   sync.Mutex
		peak int
		wg   sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.AcquireWorker(context.Background()); err != nil {
				return
			}
			defer c.ReleaseWorker()
			mu.Lock()
			peak = max(peak, c.ActiveWorkers())
			mu.Unlock()
			time.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak, 3)
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})

	require.NoError(t, c.AcquireIO(t.Context(), 500))
	require.NoError(t, c.AcquireIO(t.Context(), 400))
	assert.Equal(t, int64(900), c.IOBytes())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 2500), "a large request waits and honors cancellation")
}

func TestController_IOAboveBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	start := time.Now()
	require.NoError(t, c.AcquireIO(t.Context(), 3<<19))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int64(3<<19), c.IOBytes())
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1})
	require.NoError(t, c.AcquireIO(t.Context(), 1<<30))
	assert.Equal(t, int64(1<<30), c.IOBytes())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireWorker(t.Context()))
	c.ReleaseWorker()
	require.NoError(t, c.AcquireIO(t.Context(), 100))
	assert.Equal(t, 1, c.MaxWorkers())
	assert.Equal(t, 0, c.ActiveWorkers())
	assert.Equal(t, int64(0), c.IOBytes())
}
