//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToInt32(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    int32
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"max", math.MaxInt32, math.MaxInt32, false},
		{"min", math.MinInt32, math.MinInt32, false},
		{"too large", math.MaxInt32 + 1, 0, true},
		{"too small", math.MinInt32 - 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntToInt32(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInt32ToCount(t *testing.T) {
	got, err := Int32ToCount(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Int32ToCount(-1)
	assert.Error(t, err)

	got, err = Int32ToCount(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, got)
}

func TestIntToUint32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToUint32(0)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint32(-1)
		assert.Error(t, err)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToUint32(math.MaxUint32 + 1)
		assert.Error(t, err)
	})
}

func TestUint32ToInt(t *testing.T) {
	got, err := Uint32ToInt(math.MaxUint32)
	assert.NoError(t, err)
	assert.Equal(t, math.MaxUint32, got)
}

func TestUint64ToInt(t *testing.T) {
	_, err := Uint64ToInt(math.MaxUint64)
	assert.Error(t, err)

	got, err := Uint64ToInt(7)
	assert.NoError(t, err)
	assert.Equal(t, 7, got)
}
