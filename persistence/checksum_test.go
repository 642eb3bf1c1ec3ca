package persistence

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumReader(t *testing.T) {
	data := []byte("hierarchical vocabulary")
	sum := CalculateChecksum(data)

	cr := NewChecksumReader(bytes.NewReader(data))
	_, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, sum, cr.Sum())
	assert.NoError(t, cr.Verify(sum))

	err = cr.Verify(sum + 1)
	assert.True(t, IsChecksumMismatch(err))
	assert.Contains(t, err.Error(), "checksum mismatch")
}
