// Package testutil provides testing utilities for ewah.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic position sets of different shapes, which tests
// turn into bitmaps and compare against a reference implementation.
//
// # Position Generation
//
//	rng := testutil.NewRNG(seed)
//	sparse := rng.SparsePositions(1000, 1<<20) // few scattered bits
//	dense := rng.DensePositions(1<<16, 0.5)    // literal-heavy
//	runs := rng.RunPositions(1<<20, 500, 3000) // run-heavy
//	lists := rng.PostingLists(100000, 64, 1.2) // skewed posting lists
package testutil
