package hikmeans

import (
	"context"

	"github.com/hupe1980/hikmeans/ikmeans"
)

// Model is a single-level clustering primitive owned by one tree node.
//
// Train must tolerate k > n (producing n centers) and n = 0 (producing none).
// After training, Assign labels each vector with the index of its nearest
// center in [0, K()). Assign only reads the model and may run concurrently.
type Model interface {
	// Configure sets the iteration cap and verbosity. No training occurs.
	Configure(maxIterations, verbosity int)
	// Train fits up to k centers on n row-major vectors of length dim.
	Train(ctx context.Context, data []uint8, dim, n, k int) error
	// Assign writes the nearest center of each of the n vectors into labels.
	Assign(labels []uint32, data []uint8, n int) error
	// K returns the number of centers actually trained.
	K() int
	// Close releases the model.
	Close() error
}

// ModelFactory creates an untrained model for the given method.
type ModelFactory func(method ikmeans.Method) Model

var _ Model = (*ikmeans.Model)(nil)

// DefaultModelFactory returns a factory producing integer k-means models
// seeded with seed. Per-iteration output goes to logger at debug level.
func DefaultModelFactory(seed int64, logger *Logger) ModelFactory {
	return func(method ikmeans.Method) Model {
		opts := []ikmeans.Option{ikmeans.WithSeed(seed)}
		if logger != nil {
			opts = append(opts, ikmeans.WithLogger(logger.Logger))
		}
		return ikmeans.New(method, opts...)
	}
}
