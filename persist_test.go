package hikmeans

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hikmeans/blobstore"
	"github.com/hupe1980/hikmeans/ikmeans"
	"github.com/hupe1980/hikmeans/persistence"
	"github.com/hupe1980/hikmeans/testutil"
)

func TestTree_WriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	data, _ := testutil.NewRNG(3).ClusteredBytes(800, 4, 12, 10)

	for _, ct := range []persistence.CompressionType{
		persistence.CompressionNone,
		persistence.CompressionLZ4,
		persistence.CompressionZSTD,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			tree := trainTree(t, data, 4, 3, 3, WithCompression(ct), WithFillPolicy(FillRepeatLast))
			defer tree.Close()

			var buf bytes.Buffer
			n, err := tree.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			loaded, err := ReadTree(&buf)
			require.NoError(t, err)
			defer loaded.Close()

			assert.Equal(t, tree.Dim(), loaded.Dim())
			assert.Equal(t, tree.K(), loaded.K())
			assert.Equal(t, tree.Depth(), loaded.Depth())
			assert.Equal(t, tree.Method(), loaded.Method())
			assert.Equal(t, FillRepeatLast, loaded.FillPolicy())
			assert.Equal(t, tree.Stats(), loaded.Stats())

			want, err := tree.Push(ctx, data, 800)
			require.NoError(t, err)
			got, err := loaded.Push(ctx, data, 800)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestTree_WriteReadEmptyRoot(t *testing.T) {
	tree := New(ikmeans.Lloyd)
	defer tree.Close()
	require.NoError(t, tree.Init(2, 2, 3))
	require.NoError(t, tree.Train(context.Background(), nil, 0))

	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := ReadTree(&buf)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, 0, loaded.Root().BranchCount())
	assert.False(t, loaded.Root().IsLeaf())

	code, err := loaded.PushOne([]uint8{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint32{NoLabel, NoLabel, NoLabel}, code)
}

func TestTree_SaveLoad(t *testing.T) {
	ctx := context.Background()
	data, _ := testutil.NewRNG(5).ClusteredBytes(400, 2, 6, 8)

	stores := map[string]blobstore.Store{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			mc := &BasicMetricsCollector{}
			tree := trainTree(t, data, 2, 4, 2,
				WithCompression(persistence.CompressionZSTD),
				WithMetricsCollector(mc),
				WithIOLimit(1<<20),
			)
			defer tree.Close()

			require.NoError(t, tree.Save(ctx, store, "trees/vocab.hkm"))

			names, err := store.List(ctx, "trees/")
			require.NoError(t, err)
			assert.Equal(t, []string{"trees/vocab.hkm"}, names)

			loaded, err := Load(ctx, store, "trees/vocab.hkm", WithMetricsCollector(mc), WithIOLimit(1<<20))
			require.NoError(t, err)
			defer loaded.Close()

			want, err := tree.Push(ctx, data, 400)
			require.NoError(t, err)
			got, err := loaded.Push(ctx, data, 400)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			stats := mc.GetStats()
			assert.Equal(t, int64(1), stats.SaveCount)
			assert.Equal(t, int64(1), stats.LoadCount)
			assert.Equal(t, stats.SaveBytes, stats.LoadBytes)
			assert.Positive(t, stats.SaveBytes)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), blobstore.NewMemoryStore(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestReadTree_Corrupt(t *testing.T) {
	tree := trainTree(t, fourClusters, 2, 2, 2)
	defer tree.Close()

	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	require.NoError(t, err)
	encoded := buf.Bytes()

	t.Run("body", func(t *testing.T) {
		b := bytes.Clone(encoded)
		b[len(b)-5] ^= 0xff
		_, err := ReadTree(bytes.NewReader(b))
		assert.True(t, persistence.IsChecksumMismatch(err), "got %v", err)
	})

	t.Run("magic", func(t *testing.T) {
		b := bytes.Clone(encoded)
		b[0] ^= 0xff
		_, err := ReadTree(bytes.NewReader(b))
		assert.ErrorIs(t, err, persistence.ErrInvalidMagic)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ReadTree(bytes.NewReader(encoded[:len(encoded)-3]))
		assert.Error(t, err)
	})

	t.Run("depth", func(t *testing.T) {
		// Depth lives at offset 16 of the header. Claiming three levels
		// leaves the recorded leaves at the wrong height.
		b := bytes.Clone(encoded)
		b[16] = 3
		_, err := ReadTree(bytes.NewReader(b))
		assert.ErrorIs(t, err, persistence.ErrCorrupt)
	})

	t.Run("dim", func(t *testing.T) {
		b := bytes.Clone(encoded)
		b[8] = 5
		_, err := ReadTree(bytes.NewReader(b))
		assert.ErrorIs(t, err, persistence.ErrCorrupt)
	})

	t.Run("fill policy", func(t *testing.T) {
		// FillPolicy lives at offset 21 of the header and is not covered
		// by the body checksum.
		b := bytes.Clone(encoded)
		b[21] = 7
		_, err := ReadTree(bytes.NewReader(b))
		assert.ErrorIs(t, err, persistence.ErrCorrupt)
	})

	t.Run("oversized model", func(t *testing.T) {
		// A leaf whose model claims dim = k = 1<<31 without any centers.
		model := []byte{uint8(ikmeans.Lloyd), 0, 0, 0, 0x80, 0, 0, 0, 0x80}
		hdr := persistence.FileHeader{Dim: 2, K: 2, Depth: 1, Method: uint8(ikmeans.Lloyd)}
		var crafted bytes.Buffer
		require.NoError(t, persistence.Write(&crafted, hdr, []persistence.NodeRecord{
			{Model: model, Children: persistence.LeafChildren},
		}, persistence.CompressionNone))

		var readErr error
		require.NotPanics(t, func() {
			_, readErr = ReadTree(&crafted)
		})
		assert.ErrorIs(t, readErr, persistence.ErrCorrupt)
	})
}

func TestReadTree_ModelsClosedOnError(t *testing.T) {
	tree := trainTree(t, fourClusters, 2, 2, 2)
	defer tree.Close()

	var buf bytes.Buffer
	_, err := tree.WriteTo(&buf)
	require.NoError(t, err)
	b := buf.Bytes()
	b[16] = 3

	f := &countingFactory{}
	_, err = ReadTree(bytes.NewReader(b), WithModelFactory(f.factory()))
	require.Error(t, err)
	assert.NotZero(t, f.created.Load())
	assert.Zero(t, f.live())
}

func TestTree_WriteNotSerializable(t *testing.T) {
	tree := trainTree(t, fourClusters, 2, 2, 2, WithModelFactory(thresholdFactory))
	defer tree.Close()

	_, err := tree.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNotSerializable)

	err = tree.Save(context.Background(), blobstore.NewMemoryStore(), "x")
	assert.ErrorIs(t, err, ErrNotSerializable)
}

func TestTree_WriteUntrained(t *testing.T) {
	tree := New(ikmeans.Lloyd)
	defer tree.Close()
	require.NoError(t, tree.Init(2, 2, 2))

	_, err := tree.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNotTrained)
}
