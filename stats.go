package hikmeans

import (
	"gonum.org/v1/gonum/stat"
)

// WalkFunc is called for every node in preorder. level is 0 for the root and
// path holds the branch labels leading to the node; it is only valid during
// the call. Returning false skips the node's subtree.
type WalkFunc func(level int, path []uint32, n *Node) bool

// Walk visits the trained nodes in preorder. It is a no-op on an untrained tree.
func (t *Tree) Walk(fn WalkFunc) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.root == nil {
		return
	}
	path := make([]uint32, 0, t.depth)
	walk(t.root, 0, path, fn)
}

func walk(n *Node, level int, path []uint32, fn WalkFunc) {
	if !fn(level, path, n) {
		return
	}
	for k, c := range n.children {
		if c == nil {
			continue
		}
		walk(c, level+1, append(path, uint32(k)), fn)
	}
}

// Stats summarizes the shape of a trained tree.
type Stats struct {
	Nodes int
	// Leaves counts nodes built at the last level.
	Leaves int
	// Empty counts nodes that trained no centers.
	Empty int
	// Levels is the number of levels actually reached.
	Levels int
	// Fan-out of internal nodes.
	MinFanout    int
	MaxFanout    int
	MeanFanout   float64
	StdDevFanout float64
}

// Stats walks the tree and returns its shape summary.
func (t *Tree) Stats() Stats {
	var (
		s       Stats
		fanouts []float64
	)

	t.Walk(func(level int, _ []uint32, n *Node) bool {
		s.Nodes++
		s.Levels = max(s.Levels, level+1)
		if n.BranchCount() == 0 {
			s.Empty++
		}
		if n.IsLeaf() {
			s.Leaves++
			return true
		}
		f := len(n.children)
		if len(fanouts) == 0 || f < s.MinFanout {
			s.MinFanout = f
		}
		s.MaxFanout = max(s.MaxFanout, f)
		fanouts = append(fanouts, float64(f))
		return true
	})

	if len(fanouts) > 0 {
		s.MeanFanout, s.StdDevFanout = stat.PopMeanStdDev(fanouts, nil)
	}
	return s
}
