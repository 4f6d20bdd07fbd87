package rlw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	assert.Equal(t, 64, Bits[uint64]())
	assert.Equal(t, 32, Bits[uint32]())

	assert.Equal(t, uint64(1<<32-1), MaxRunningLength[uint64]())
	assert.Equal(t, 1<<31-1, MaxLiteralWords[uint64]())

	assert.Equal(t, uint64(1<<16-1), MaxRunningLength[uint32]())
	assert.Equal(t, 1<<15-1, MaxLiteralWords[uint32]())
}

func TestFieldsAreIndependent(t *testing.T) {
	t.Run("uint64", func(t *testing.T) {
		testFieldsAreIndependent[uint64](t)
	})
	t.Run("uint32", func(t *testing.T) {
		testFieldsAreIndependent[uint32](t)
	})
}

func testFieldsAreIndependent[W Word](t *testing.T) {
	maxRun := MaxRunningLength[W]()
	maxLit := MaxLiteralWords[W]()

	tests := []struct {
		name string
		bit  bool
		run  uint64
		lit  int
	}{
		{"zero", false, 0, 0},
		{"bit only", true, 0, 0},
		{"run only", false, 7, 0},
		{"literals only", false, 0, 5},
		{"all max", true, maxRun, maxLit},
		{"max run", false, maxRun, 1},
		{"max literals", true, 1, maxLit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Make[W](tt.bit, tt.run, tt.lit)
			assert.Equal(t, tt.bit, RunningBit(w))
			assert.Equal(t, tt.run, RunningLength(w))
			assert.Equal(t, tt.lit, LiteralWords(w))
			assert.Equal(t, tt.run+uint64(tt.lit), Size(w))

			// Mutating one field leaves the others intact.
			SetRunningBit(&w, !tt.bit)
			assert.Equal(t, !tt.bit, RunningBit(w))
			assert.Equal(t, tt.run, RunningLength(w))
			assert.Equal(t, tt.lit, LiteralWords(w))

			SetRunningLength(&w, maxRun/2)
			assert.Equal(t, !tt.bit, RunningBit(w))
			assert.Equal(t, maxRun/2, RunningLength(w))
			assert.Equal(t, tt.lit, LiteralWords(w))

			SetLiteralWords(&w, 3)
			assert.Equal(t, !tt.bit, RunningBit(w))
			assert.Equal(t, maxRun/2, RunningLength(w))
			assert.Equal(t, 3, LiteralWords(w))
		})
	}
}

func TestOverflowPanics(t *testing.T) {
	var w uint64
	require.Panics(t, func() { SetRunningLength(&w, MaxRunningLength[uint64]()+1) })
	require.Panics(t, func() { SetLiteralWords(&w, MaxLiteralWords[uint64]()+1) })
	require.Panics(t, func() { SetLiteralWords(&w, -1) })

	var v uint32
	require.Panics(t, func() { SetRunningLength(&v, 1<<16) })
	require.Panics(t, func() { SetLiteralWords(&v, 1<<15) })
	assert.Zero(t, v)
}
