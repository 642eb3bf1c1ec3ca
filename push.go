package hikmeans

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// NoLabel marks path code slots below an early leaf under FillSentinel.
const NoLabel = math.MaxUint32

// FillPolicy decides what is written into the path code slots a vector does
// not reach because its branch ended before the last level.
type FillPolicy uint8

const (
	// FillSentinel writes NoLabel into unreached slots.
	FillSentinel FillPolicy = iota
	// FillRepeatLast repeats the last written label. Vectors that reach no
	// label at all still get NoLabel.
	FillRepeatLast
)

func (p FillPolicy) String() string {
	switch p {
	case FillSentinel:
		return "sentinel"
	case FillRepeatLast:
		return "repeat-last"
	default:
		return fmt.Sprintf("FillPolicy(%d)", uint8(p))
	}
}

// pushChunk is the number of vectors each parallel push task handles.
const pushChunk = 1024

// Push returns the path codes of n vectors stored row-major in data, Depth()
// labels per vector.
func (t *Tree) Push(ctx context.Context, data []uint8, n int) ([]uint32, error) {
	if n < 0 {
		return nil, &ErrDimensionMismatch{Expected: 0, Actual: n}
	}
	codes := make([]uint32, n*t.Depth())
	if err := t.PushInto(ctx, codes, data, n); err != nil {
		return nil, err
	}
	return codes, nil
}

// PushInto writes the path codes of n vectors into codes, which must hold at
// least n*Depth() entries. Vector i's labels occupy codes[i*Depth():(i+1)*Depth()].
func (t *Tree) PushInto(ctx context.Context, codes []uint32, data []uint8, n int) error {
	start := time.Now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	err := t.pushInto(ctx, codes, data, n)
	t.opts.metricsCollector.RecordPush(n, time.Since(start), err)
	t.opts.logger.LogPush(ctx, n, err)
	return err
}

// PushOne returns the path code of a single vector.
func (t *Tree) PushOne(vec []uint8) ([]uint32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkPush(); err != nil {
		return nil, err
	}
	if len(vec) != t.dim {
		return nil, &ErrDimensionMismatch{Expected: t.dim, Actual: len(vec)}
	}
	code := make([]uint32, t.depth)
	if err := t.pushVector(code, vec); err != nil {
		return nil, err
	}
	return code, nil
}

func (t *Tree) checkPush() error {
	if t.closed {
		return ErrClosed
	}
	if t.root == nil {
		return ErrNotTrained
	}
	return nil
}

func (t *Tree) pushInto(ctx context.Context, codes []uint32, data []uint8, n int) error {
	if err := t.checkPush(); err != nil {
		return err
	}
	if n < 0 || len(data) < n*t.dim {
		return &ErrDimensionMismatch{Expected: n * t.dim, Actual: len(data)}
	}
	if len(codes) < n*t.depth {
		return &ErrDimensionMismatch{Expected: n * t.depth, Actual: len(codes)}
	}

	pushRange := func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if i%pushChunk == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			vec := data[i*t.dim : (i+1)*t.dim]
			if err := t.pushVector(codes[i*t.depth:(i+1)*t.depth], vec); err != nil {
				return fmt.Errorf("push vector %d: %w", i, err)
			}
		}
		return nil
	}

	if t.opts.concurrency <= 1 || n <= pushChunk {
		return pushRange(ctx, 0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.concurrency)
	for lo := 0; lo < n; lo += pushChunk {
		hi := min(lo+pushChunk, n)
		g.Go(func() error {
			return pushRange(gctx, lo, hi)
		})
	}
	return g.Wait()
}

// pushVector walks vec from the root, writing one label per level into code
// until a node without children or without centers is reached.
func (t *Tree) pushVector(code []uint32, vec []uint8) error {
	var label [1]uint32

	d := 0
	node := t.root
	for node != nil && d < len(code) {
		if node.model.K() == 0 {
			break
		}
		if err := node.model.Assign(label[:], vec, 1); err != nil {
			return translateError(err)
		}
		best := label[0]
		code[d] = best
		d++

		if node.children == nil {
			break
		}
		if int(best) >= len(node.children) {
			return fmt.Errorf("label %d out of range [0, %d) at level %d", best, len(node.children), d-1)
		}
		node = node.children[best]
	}

	t.fill(code, d)
	return nil
}

// fill writes the unreached slots code[d:] according to the fill policy.
func (t *Tree) fill(code []uint32, d int) {
	v := uint32(NoLabel)
	if t.opts.fillPolicy == FillRepeatLast && d > 0 {
		v = code[d-1]
	}
	for i := d; i < len(code); i++ {
		code[i] = v
	}
}
