package hikmeans

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hikmeans/blobstore"
	"github.com/hupe1980/hikmeans/testutil"
)

// TestNoGoroutineLeaks verifies that training and pushing in parallel leave
// no goroutines behind once the tree is closed.
func TestNoGoroutineLeaks(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		maxLeaks int
	}{
		{name: "sequential", maxLeaks: 0},
		{name: "parallel", opts: []Option{WithConcurrency(8)}, maxLeaks: 0},
		{name: "parallel with memory limit", opts: []Option{WithConcurrency(8), WithMemoryLimit(1 << 20)}, maxLeaks: 0},
	}

	data, _ := testutil.NewRNG(9).ClusteredBytes(5000, 8, 27, 10)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime.GC()
			time.Sleep(50 * time.Millisecond)

			initial := runtime.NumGoroutine()
			t.Logf("Initial goroutines: %d", initial)

			ctx := context.Background()
			tree := trainTree(t, data, 8, 3, 3, tt.opts...)

			_, err := tree.Push(ctx, data, 5000)
			require.NoError(t, err)

			store := blobstore.NewMemoryStore()
			require.NoError(t, tree.Save(ctx, store, "tree"))
			loaded, err := Load(ctx, store, "tree", tt.opts...)
			require.NoError(t, err)

			require.NoError(t, loaded.Close())
			require.NoError(t, tree.Close())

			deadline := time.Now().Add(2 * time.Second)
			var final, leaked int
			for {
				runtime.GC()
				time.Sleep(50 * time.Millisecond)

				final = runtime.NumGoroutine()
				leaked = final - initial
				if leaked <= tt.maxLeaks || time.Now().After(deadline) {
					break
				}
			}

			t.Logf("Final goroutines: %d (leaked: %d)", final, leaked)

			if leaked > tt.maxLeaks {
				t.Errorf("Goroutine leak detected: started with %d, ended with %d (leaked: %d, max allowed: %d)",
					initial, final, leaked, tt.maxLeaks)

				buf := make([]byte, 1<<20)
				stackSize := runtime.Stack(buf, true)
				t.Logf("Goroutine stacks:\n%s", buf[:stackSize])
			}
		})
	}
}
