package ewah

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash64(t *testing.T) {
	a := BitmapOf(1, 2, 3, 500)
	b := BitmapOf(1, 2, 3, 500)
	b.SetSizeInBits(1<<16, false)

	assert.Equal(t, a.Hash64(), b.Hash64(), "sizes do not affect the hash")
	assert.Equal(t, a.Hash64(), BitmapOf32(1, 2, 3, 500).Hash64(), "word types do not affect the hash")
	assert.NotEqual(t, a.Hash64(), BitmapOf(1, 2, 3, 501).Hash64())
	assert.NotEqual(t, a.Hash64(), BitmapOf(1, 2, 3).Hash64())
	assert.Equal(t, New().Hash64(), New32().Hash64())
}

func TestHash64_FollowsEquals(t *testing.T) {
	all := fixtures(13)
	for _, fa := range all {
		a := fromPositions[uint64](fa.positions)
		for _, fb := range all {
			b := fromPositions[uint64](fb.positions)
			if a.Equals(b) {
				assert.Equal(t, a.Hash64(), b.Hash64(), "%s vs %s", fa.name, fb.name)
			}
		}
		assert.Equal(t, a.Hash64(), a.Xor(New()).Hash64(), fa.name)
	}
}
