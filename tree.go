package hikmeans

import (
	"sync"

	"github.com/hupe1980/hikmeans/ikmeans"
	"github.com/hupe1980/hikmeans/resource"
)

// Tree is a hierarchical integer k-means vocabulary tree.
//
// A Tree is safe for concurrent use. Push calls run concurrently with each
// other and with a running Train, which swaps the new root in only once it
// is complete. Train and Init are serialized.
type Tree struct {
	// trainMu serializes Train and Init; mu guards the fields below.
	trainMu sync.Mutex
	mu      sync.RWMutex

	method ikmeans.Method
	dim    int
	k      int
	depth  int

	maxIterations int
	verbosity     int

	root   *Node
	closed bool

	opts options
	rc   *resource.Controller
}

// New creates an untrained tree with dimensionality, branching factor and
// depth all zero. Call Init before Train.
func New(method ikmeans.Method, optFns ...Option) *Tree {
	o := applyOptions(optFns)
	return &Tree{
		method:        method,
		maxIterations: o.maxIterations,
		verbosity:     o.verbosity,
		opts:          o,
		rc:            newController(o),
	}
}

func newController(o options) *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		MaxWorkers:         int64(max(o.concurrency-1, 1)),
		IOLimitBytesPerSec: o.ioLimit,
	})
}

// Init discards any trained nodes and sets the tree shape. It can be called
// any number of times. Errors from closing the old models are returned after
// the reset has been applied.
func (t *Tree) Init(dim, k, depth int) error {
	if dim < 1 || k < 1 || depth < 1 {
		return &ErrInvalidConfig{Dim: dim, K: k, Depth: depth}
	}

	t.trainMu.Lock()
	defer t.trainMu.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	old := t.root
	t.root = nil
	t.dim, t.k, t.depth = dim, k, depth

	return old.teardown()
}

// Close releases every node and model. Further calls return nil.
func (t *Tree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	old := t.root
	t.root = nil
	return old.teardown()
}

// Method returns the clustering method used for every node.
func (t *Tree) Method() ikmeans.Method { return t.method }

// Dim returns the vector dimensionality.
func (t *Tree) Dim() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dim
}

// K returns the nominal branching factor.
func (t *Tree) K() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.k
}

// Depth returns the number of levels.
func (t *Tree) Depth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.depth
}

// MaxIterations returns the per-node iteration cap.
func (t *Tree) MaxIterations() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.maxIterations
}

// SetMaxIterations changes the iteration cap used by the next Train.
func (t *Tree) SetMaxIterations(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxIterations = max(n, 0)
}

// Verbosity returns the verbosity.
func (t *Tree) Verbosity() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.verbosity
}

// SetVerbosity changes the verbosity used by the next Train.
func (t *Tree) SetVerbosity(v int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.verbosity = v
}

// FillPolicy returns the policy for path code slots below an early leaf.
func (t *Tree) FillPolicy() FillPolicy { return t.opts.fillPolicy }

// Root returns the root node, or nil before a successful Train.
func (t *Tree) Root() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Trained reports whether the tree has a root.
func (t *Tree) Trained() bool {
	return t.Root() != nil
}
