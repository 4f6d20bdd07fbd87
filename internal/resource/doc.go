// Package resource governs the concurrency and I/O rate of bulk bitmap store
// operations.
//
// A Controller combines two limits:
//
//   - Workers: a weighted semaphore bounding how many blobs are saved or
//     loaded at once.
//   - I/O: a token bucket bounding bytes per second moved to or from the
//     blob store.
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         8,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
//	if err := rc.AcquireIO(ctx, len(payload)); err != nil {
//	    return err
//	}
//
// All methods are safe for concurrent use and are no-ops on a nil Controller.
package resource
