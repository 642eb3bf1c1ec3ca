package hikmeans

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/hikmeans/ikmeans"
)

// fourClusters is the eight point M=2 dataset made of two far apart groups,
// each holding two tight pairs.
var fourClusters = []uint8{
	0, 0, 0, 1, // pair a1
	20, 20, 20, 21, // pair a2
	200, 200, 200, 201, // pair b1
	220, 220, 220, 221, // pair b2
}

// countingFactory wraps the default factory and tracks model lifetimes.
type countingFactory struct {
	created atomic.Int64
	closed  atomic.Int64

	mu          sync.Mutex
	verbosities []int
}

func (f *countingFactory) factory() ModelFactory {
	inner := DefaultModelFactory(ikmeans.DefaultSeed, nil)
	return func(method ikmeans.Method) Model {
		f.created.Add(1)
		return &countingModel{Model: inner(method), f: f}
	}
}

func (f *countingFactory) live() int64 {
	return f.created.Load() - f.closed.Load()
}

type countingModel struct {
	Model
	f      *countingFactory
	closed bool
}

func (m *countingModel) Configure(maxIterations, verbosity int) {
	m.f.mu.Lock()
	m.f.verbosities = append(m.f.verbosities, verbosity)
	m.f.mu.Unlock()
	m.Model.Configure(maxIterations, verbosity)
}

func (m *countingModel) Close() error {
	if !m.closed {
		m.closed = true
		m.f.closed.Add(1)
	}
	return m.Model.Close()
}

// thresholdModel labels a vector 1 when its first value is >= 128 and 0
// otherwise, clamped to the trained branch count. Training on points that
// all fall below 128 leaves branch 1 without points.
type thresholdModel struct {
	k int
}

func thresholdFactory(ikmeans.Method) Model { return &thresholdModel{} }

func (m *thresholdModel) Configure(int, int) {}

func (m *thresholdModel) Train(_ context.Context, _ []uint8, _, n, k int) error {
	m.k = min(k, n)
	return nil
}

func (m *thresholdModel) Assign(labels []uint32, data []uint8, n int) error {
	if n == 0 {
		return nil
	}
	dim := len(data) / n
	for i := 0; i < n; i++ {
		l := 0
		if data[i*dim] >= 128 {
			l = 1
		}
		labels[i] = uint32(min(l, m.k-1))
	}
	return nil
}

func (m *thresholdModel) K() int { return m.k }

func (m *thresholdModel) Close() error { return nil }

func trainTree(tb interface {
	Helper()
	Fatalf(string, ...any)
}, data []uint8, dim, k, depth int, opts ...Option) *Tree {
	tb.Helper()
	tree := New(ikmeans.Lloyd, opts...)
	if err := tree.Init(dim, k, depth); err != nil {
		tb.Fatalf("init: %v", err)
	}
	if err := tree.Train(context.Background(), data, len(data)/dim); err != nil {
		tb.Fatalf("train: %v", err)
	}
	return tree
}

func codeOf(codes []uint32, depth, i int) []uint32 {
	return codes[i*depth : (i+1)*depth]
}
