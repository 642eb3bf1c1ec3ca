package hikmeans

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hikmeans/ikmeans"
	"github.com/hupe1980/hikmeans/resource"
)

// Train builds the tree from n vectors stored row-major in data.
//
// The whole tree is built before it replaces the current one, so a failed
// Train leaves the previously trained tree in place. Push and the accessors
// keep serving the previous tree while the new one is built.
func (t *Tree) Train(ctx context.Context, data []uint8, n int) error {
	start := time.Now()

	t.trainMu.Lock()
	defer t.trainMu.Unlock()

	t.mu.RLock()
	b, err := t.newBuilder(data, n)
	logger := t.logger()
	t.mu.RUnlock()

	var root *Node
	if err == nil {
		root, err = b.build(ctx, data[:n*b.dim], n, b.depth)
	}
	nodes := 0
	if err == nil {
		nodes = int(b.nodes.Load())
	}
	elapsed := time.Since(start)

	t.opts.metricsCollector.RecordTrain(n, nodes, elapsed, err)
	logger.LogTrain(ctx, n, nodes, elapsed, err)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		_ = root.teardown()
		return ErrClosed
	}
	old := t.root
	t.root = root
	if err := old.teardown(); err != nil {
		logger.WarnContext(ctx, "closing previous tree failed", "error", err)
	}
	return nil
}

func (t *Tree) logger() *Logger {
	return t.opts.logger.WithTree(t.dim, t.k, t.depth)
}

// newBuilder snapshots the tree settings for one Train. The caller holds
// t.mu for reading.
func (t *Tree) newBuilder(data []uint8, n int) (*builder, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if t.dim < 1 || t.k < 1 || t.depth < 1 {
		return nil, &ErrInvalidConfig{Dim: t.dim, K: t.k, Depth: t.depth}
	}
	if n < 0 || len(data) < n*t.dim {
		return nil, &ErrDimensionMismatch{Expected: n * t.dim, Actual: len(data)}
	}

	return &builder{
		factory:       t.opts.modelFactory,
		method:        t.method,
		dim:           t.dim,
		k:             t.k,
		depth:         t.depth,
		maxIterations: t.maxIterations,
		verbosity:     t.verbosity,
		rc:            t.rc,
		parallel:      t.opts.concurrency > 1,
		progress:      newProgressReporter(t.opts.progress, t.logger(), t.verbosity),
	}, nil
}

// builder holds the per-Train state shared by all recursive calls.
type builder struct {
	factory       ModelFactory
	method        ikmeans.Method
	dim           int
	k             int
	depth         int
	maxIterations int
	verbosity     int

	rc       *resource.Controller
	parallel bool
	progress *progressReporter

	nodes atomic.Int64
}

// build trains the node for data and, above the last level, its subtrees.
// On error everything built below the node is torn down before returning.
func (b *builder) build(ctx context.Context, data []uint8, n, height int) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level := b.depth - height

	model := b.factory(b.method)
	model.Configure(b.maxIterations, b.verbosity-1-level)
	node := &Node{model: model}
	b.nodes.Add(1)

	if err := model.Train(ctx, data, b.dim, n, min(b.k, n)); err != nil {
		_ = node.teardown()
		return nil, fmt.Errorf("train node at level %d: %w", level, err)
	}

	if height == 1 {
		return node, nil
	}

	if err := b.buildChildren(ctx, node, data, n, height); err != nil {
		_ = node.teardown()
		return nil, err
	}
	return node, nil
}

func (b *builder) buildChildren(ctx context.Context, node *Node, data []uint8, n, height int) error {
	level := b.depth - height
	kEff := node.model.K()
	node.children = make([]*Node, kEff)
	if kEff == 0 {
		return nil
	}

	labelBytes := int64(n) * 4
	if !b.rc.TryAcquireMemory(labelBytes) {
		return fmt.Errorf("%w: %d label bytes at level %d", ErrResourceExhausted, labelBytes, level)
	}
	defer b.rc.ReleaseMemory(labelBytes)

	labels := make([]uint32, n)
	if err := node.model.Assign(labels, data, n); err != nil {
		return fmt.Errorf("assign at level %d: %w", level, err)
	}
	counts, err := labelCounts(labels, kEff)
	if err != nil {
		return fmt.Errorf("assign at level %d: %w", level, err)
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for k := 0; k < kEff; k++ {
		size := int64(counts[k]) * int64(b.dim)
		if !b.rc.TryAcquireMemory(size) {
			err := fmt.Errorf("%w: %d subset bytes at level %d", ErrResourceExhausted, size, level)
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}

		subset, nk := extractSubset(data, labels, n, b.dim, uint32(k), counts[k])
		slot := k
		buildChild := func(ctx context.Context) error {
			defer b.rc.ReleaseMemory(size)
			child, err := b.build(ctx, subset, nk, height-1)
			if err != nil {
				return err
			}
			node.children[slot] = child
			b.progress.report(ctx, level, int(done.Add(1)), kEff)
			return nil
		}

		if b.parallel && b.rc.TryAcquireWorker() {
			g.Go(func() error {
				defer b.rc.ReleaseWorker()
				return buildChild(gctx)
			})
			continue
		}
		if err := buildChild(gctx); err != nil {
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}
	}

	return g.Wait()
}
