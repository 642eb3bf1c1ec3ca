package hikmeans

import (
	"bytes"
	"context"
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/hikmeans/blobstore"
	"github.com/hupe1980/hikmeans/ikmeans"
	"github.com/hupe1980/hikmeans/internal/conv"
	"github.com/hupe1980/hikmeans/persistence"
	"github.com/hupe1980/hikmeans/resource"
)

// WriteTo encodes the trained tree. Every node model must implement
// encoding.BinaryMarshaler.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkPush(); err != nil {
		return 0, err
	}

	var nodes []persistence.NodeRecord
	var encodeErr error
	walk(t.root, 0, nil, func(_ int, _ []uint32, n *Node) bool {
		if encodeErr != nil {
			return false
		}
		m, ok := n.model.(encoding.BinaryMarshaler)
		if !ok {
			encodeErr = fmt.Errorf("%w: %T", ErrNotSerializable, n.model)
			return false
		}
		data, err := m.MarshalBinary()
		if err != nil {
			encodeErr = fmt.Errorf("encode model: %w", err)
			return false
		}
		children := int32(persistence.LeafChildren)
		if !n.IsLeaf() {
			if children, err = conv.IntToInt32(len(n.children)); err != nil {
				encodeErr = err
				return false
			}
		}
		nodes = append(nodes, persistence.NodeRecord{Model: data, Children: children})
		return true
	})
	if encodeErr != nil {
		return 0, encodeErr
	}

	hdr := persistence.FileHeader{
		Method:     uint8(t.method),
		FillPolicy: uint8(t.opts.fillPolicy),
	}
	for _, f := range []struct {
		dst *uint32
		v   int
	}{{&hdr.Dim, t.dim}, {&hdr.K, t.k}, {&hdr.Depth, t.depth}} {
		v, err := conv.IntToUint32(f.v)
		if err != nil {
			return 0, fmt.Errorf("encode header: %w", err)
		}
		*f.dst = v
	}

	cw := &countingWriter{w: w}
	err := persistence.Write(cw, hdr, nodes, t.opts.compression)
	return cw.n, err
}

// ReadTree decodes a tree written by WriteTo. The method, shape and fill
// policy come from the encoded header; opts supply everything else, and the
// model factory must produce models implementing encoding.BinaryUnmarshaler.
func ReadTree(r io.Reader, opts ...Option) (*Tree, error) {
	f, err := persistence.Read(r)
	if err != nil {
		return nil, err
	}
	hdr := f.Header

	method := ikmeans.Method(hdr.Method)
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, ikmeans.ErrUnknownMethod)
	}

	var shape [3]int
	for i, v := range []uint32{hdr.Dim, hdr.K, hdr.Depth} {
		if shape[i], err = conv.Uint32ToInt(v); err != nil {
			return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
		}
	}

	fill := FillPolicy(hdr.FillPolicy)
	if fill != FillSentinel && fill != FillRepeatLast {
		return nil, fmt.Errorf("%w: fill policy %d", persistence.ErrCorrupt, hdr.FillPolicy)
	}

	t := New(method, opts...)
	if err := t.Init(shape[0], shape[1], shape[2]); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}
	t.opts.fillPolicy = fill

	d := &treeDecoder{
		records:       f.Nodes,
		factory:       t.opts.modelFactory,
		method:        method,
		dim:           t.dim,
		depth:         t.depth,
		maxIterations: t.maxIterations,
		verbosity:     t.verbosity,
	}
	root, err := d.node(t.depth)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.records) {
		_ = root.teardown()
		return nil, fmt.Errorf("%w: %d unused node records", persistence.ErrCorrupt, len(d.records)-d.pos)
	}

	t.root = root
	return t, nil
}

type treeDecoder struct {
	records       []persistence.NodeRecord
	pos           int
	factory       ModelFactory
	method        ikmeans.Method
	dim           int
	depth         int
	maxIterations int
	verbosity     int
}

func (d *treeDecoder) node(height int) (*Node, error) {
	if d.pos >= len(d.records) {
		return nil, fmt.Errorf("%w: missing node record %d", persistence.ErrCorrupt, d.pos)
	}
	rec := d.records[d.pos]
	d.pos++

	level := d.depth - height
	model := d.factory(d.method)
	model.Configure(d.maxIterations, d.verbosity-1-level)
	node := &Node{model: model}

	u, ok := model.(encoding.BinaryUnmarshaler)
	if !ok {
		_ = node.teardown()
		return nil, fmt.Errorf("%w: %T", ErrNotSerializable, model)
	}
	if err := u.UnmarshalBinary(rec.Model); err != nil {
		_ = node.teardown()
		return nil, fmt.Errorf("%w: node %d: %w", persistence.ErrCorrupt, d.pos-1, err)
	}
	if dm, ok := model.(interface{ Dim() int }); ok && model.K() > 0 && dm.Dim() != d.dim {
		_ = node.teardown()
		return nil, fmt.Errorf("%w: node %d has dim %d, tree has %d", persistence.ErrCorrupt, d.pos-1, dm.Dim(), d.dim)
	}

	if rec.IsLeaf() != (height == 1) {
		_ = node.teardown()
		return nil, fmt.Errorf("%w: node %d at level %d has leaf=%t", persistence.ErrCorrupt, d.pos-1, level, rec.IsLeaf())
	}
	if rec.IsLeaf() {
		return node, nil
	}
	if int(rec.Children) != model.K() {
		_ = node.teardown()
		return nil, fmt.Errorf("%w: node %d has %d children for %d centers", persistence.ErrCorrupt, d.pos-1, rec.Children, model.K())
	}

	node.children = make([]*Node, rec.Children)
	for k := range node.children {
		c, err := d.node(height - 1)
		if err != nil {
			_ = node.teardown()
			return nil, err
		}
		node.children[k] = c
	}
	return node, nil
}

// Save writes the tree to store under name, honoring the IO limit.
func (t *Tree) Save(ctx context.Context, store blobstore.Store, name string) error {
	start := time.Now()

	var buf bytes.Buffer
	_, err := t.WriteTo(resource.NewRateLimitedWriter(ctx, &buf, t.rc))
	if err == nil {
		err = store.Put(ctx, name, buf.Bytes())
	}

	size := int64(buf.Len())
	t.opts.metricsCollector.RecordSave(size, time.Since(start), err)
	t.opts.logger.LogSave(ctx, name, size, err)
	return err
}

// Load reads a tree saved under name, honoring the IO limit in opts.
func Load(ctx context.Context, store blobstore.Store, name string, opts ...Option) (*Tree, error) {
	start := time.Now()
	o := applyOptions(opts)

	t, size, err := load(ctx, store, name, newController(o), opts)

	o.metricsCollector.RecordLoad(size, time.Since(start), err)
	o.logger.LogLoad(ctx, name, size, err)
	return t, err
}

func load(ctx context.Context, store blobstore.Store, name string, rc *resource.Controller, opts []Option) (*Tree, int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer blob.Close()

	size := blob.Size()
	r := resource.NewRateLimitedReader(ctx, io.NewSectionReader(blob, 0, size), rc)
	t, err := ReadTree(r, opts...)
	if err != nil {
		return nil, size, fmt.Errorf("read %s: %w", name, err)
	}
	return t, size, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
