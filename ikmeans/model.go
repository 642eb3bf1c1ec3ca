package ikmeans

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/hikmeans/distance"
)

// DefaultMaxIterations is the iteration cap used when Configure is not called.
const DefaultMaxIterations = 200

// DefaultSeed seeds center initialization when WithSeed is not used.
const DefaultSeed = 1

// Model is a single-level integer k-means clustering.
//
// A Model is not safe for concurrent training. Once trained, Assign and
// AssignOne only read the centers and may be called concurrently.
type Model struct {
	method    Method
	maxIter   int
	verbosity int
	seed      int64
	logger    *slog.Logger

	dim     int
	k       int
	centers []int32
}

// Option configures a Model.
type Option func(*Model)

// WithSeed sets the seed used to pick initial centers.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.seed = seed
	}
}

// WithLogger sets the logger used for per-iteration debug output.
// Output is only produced when the configured verbosity is positive.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// New creates an untrained model.
func New(method Method, optFns ...Option) *Model {
	m := &Model{
		method:  method,
		maxIter: DefaultMaxIterations,
		seed:    DefaultSeed,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(m)
		}
	}
	return m
}

// Configure sets the iteration cap and verbosity. No training occurs.
func (m *Model) Configure(maxIterations, verbosity int) {
	if maxIterations < 0 {
		maxIterations = 0
	}
	m.maxIter = maxIterations
	m.verbosity = verbosity
}

// Method returns the training method.
func (m *Model) Method() Method { return m.method }

// MaxIterations returns the iteration cap.
func (m *Model) MaxIterations() int { return m.maxIter }

// Verbosity returns the configured verbosity.
func (m *Model) Verbosity() int { return m.verbosity }

// K returns the number of trained centers.
func (m *Model) K() int { return m.k }

// Dim returns the dimensionality of the trained centers.
func (m *Model) Dim() int { return m.dim }

// Centers returns a copy of the flattened centers (K * Dim).
func (m *Model) Centers() []int32 {
	out := make([]int32, len(m.centers))
	copy(out, m.centers)
	return out
}

// Train fits up to k centers on n vectors of dimensionality dim stored
// row-major in data. k is clamped to n, so n = 0 yields a model with no
// centers.
func (m *Model) Train(ctx context.Context, data []uint8, dim, n, k int) error {
	if !m.method.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownMethod, m.method)
	}
	if n < 0 || dim < 0 {
		return fmt.Errorf("%w: n=%d dim=%d", ErrDimensionMismatch, n, dim)
	}
	if len(data) < n*dim {
		return fmt.Errorf("%w: need %d values, got %d", ErrDimensionMismatch, n*dim, len(data))
	}
	if k > n {
		k = n
	}
	if k < 0 {
		k = 0
	}

	m.dim = dim
	m.k = k
	m.centers = make([]int32, k*dim)
	if k == 0 {
		return nil
	}

	m.initRandData(data, n)

	switch m.method {
	case Elkan:
		return m.trainElkan(ctx, data, n)
	default:
		return m.trainLloyd(ctx, data, n)
	}
}

// Assign writes the nearest center index of each of the n vectors in data
// into labels.
func (m *Model) Assign(labels []uint32, data []uint8, n int) error {
	if n == 0 {
		return nil
	}
	if m.k == 0 {
		return ErrNotTrained
	}
	if len(labels) < n {
		return fmt.Errorf("%w: need %d labels, got %d", ErrDimensionMismatch, n, len(labels))
	}
	if len(data) < n*m.dim {
		return fmt.Errorf("%w: need %d values, got %d", ErrDimensionMismatch, n*m.dim, len(data))
	}
	for i := 0; i < n; i++ {
		best, _ := distance.Nearest(data[i*m.dim:(i+1)*m.dim], m.centers, m.dim)
		labels[i] = uint32(best)
	}
	return nil
}

// AssignOne returns the nearest center index for a single vector.
func (m *Model) AssignOne(vec []uint8) (uint32, error) {
	if m.k == 0 {
		return 0, ErrNotTrained
	}
	if len(vec) != m.dim {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, m.dim, len(vec))
	}
	best, _ := distance.Nearest(vec, m.centers, m.dim)
	return uint32(best), nil
}

// Close releases the centers. The model reports K() == 0 afterwards.
func (m *Model) Close() error {
	m.centers = nil
	m.k = 0
	return nil
}

func (m *Model) center(j int) []int32 {
	return m.centers[j*m.dim : (j+1)*m.dim]
}

func (m *Model) debug(msg string, args ...any) {
	if m.verbosity <= 0 || m.logger == nil {
		return
	}
	m.logger.Debug(msg, args...)
}
