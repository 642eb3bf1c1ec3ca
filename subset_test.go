package hikmeans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelCounts(t *testing.T) {
	counts, err := labelCounts([]uint32{0, 2, 2, 1, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 3, 0}, counts)

	_, err = labelCounts([]uint32{0, 4}, 4)
	assert.Error(t, err)
}

func TestExtractSubset(t *testing.T) {
	data := []uint8{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
		5, 5,
	}
	labels := []uint32{1, 0, 1, 1, 0}

	sub, n := extractSubset(data, labels, 5, 2, 1, 3)
	assert.Equal(t, 3, n)
	assert.Equal(t, []uint8{1, 1, 3, 3, 4, 4}, sub)

	sub, n = extractSubset(data, labels, 5, 2, 0, 0)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint8{2, 2, 5, 5}, sub)

	// Branches partition the rows.
	total := 0
	for k := uint32(0); k < 3; k++ {
		_, nk := extractSubset(data, labels, 5, 2, k, 0)
		total += nk
	}
	assert.Equal(t, 5, total)

	sub, n = extractSubset(data, labels, 5, 2, 2, 0)
	assert.Zero(t, n)
	assert.Empty(t, sub)

	// The subset is a copy.
	sub, _ = extractSubset(data, labels, 5, 2, 1, 3)
	sub[0] = 99
	assert.Equal(t, uint8(1), data[0])
}
