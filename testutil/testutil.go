package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// SparsePositions returns n distinct positions in [0, universe), ascending.
// n is capped at universe.
func (r *RNG) SparsePositions(n, universe int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, universe)
	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for len(out) < n {
		p := r.rand.Intn(universe)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// DensePositions returns every position in [0, universe) with probability
// density, ascending.
func (r *RNG) DensePositions(universe int, density float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, 0, int(float64(universe)*density)+1)
	for p := range universe {
		if r.rand.Float64() < density {
			out = append(out, p)
		}
	}
	return out
}

// RunPositions returns runs of consecutive positions separated by gaps, the
// shape that compresses best. Run and gap lengths are uniform in
// [1, maxRun] and [1, maxGap].
func (r *RNG) RunPositions(universe, maxRun, maxGap int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []int
	p := r.rand.Intn(maxGap + 1)
	for p < universe {
		run := 1 + r.rand.Intn(maxRun)
		for k := 0; k < run && p < universe; k++ {
			out = append(out, p)
			p++
		}
		p += 1 + r.rand.Intn(maxGap)
	}
	return out
}

// MixedPositions concatenates dense, sparse and run-shaped regions of the
// given length each, starting at region boundaries.
func (r *RNG) MixedPositions(region int) []int {
	var out []int
	out = append(out, r.DensePositions(region, 0.5)...)
	for _, p := range r.SparsePositions(region/100+1, region) {
		out = append(out, region+p)
	}
	for _, p := range r.RunPositions(region, 500, 3000) {
		out = append(out, 2*region+p)
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// PostingLists assigns each of docs documents to terms via a Zipfian draw
// and returns the ascending document ids per term. Skewed term frequencies
// give a mix of long dense lists and short sparse ones.
func (r *RNG) PostingLists(docs, terms int, s float64) [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists := make([][]int, terms)
	for doc := range docs {
		t := r.zipfLocked(terms, s)
		lists[t] = append(lists[t], doc)
	}
	return lists
}
