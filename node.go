package hikmeans

import "errors"

// Node is one clustering level of a Tree.
//
// A node built at the last level is a leaf and has no children slice. Any
// other node has exactly Model().K() children, one per branch label.
type Node struct {
	model    Model
	children []*Node
}

// Model returns the node's clustering model.
func (n *Node) Model() Model { return n.model }

// Children returns the child nodes indexed by branch label, or nil for a leaf.
// The returned slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Child returns the subtree for branch label k, or nil if there is none.
func (n *Node) Child(k int) *Node {
	if k < 0 || k >= len(n.children) {
		return nil
	}
	return n.children[k]
}

// IsLeaf reports whether the node was built at the last level.
func (n *Node) IsLeaf() bool { return n.children == nil }

// BranchCount returns the number of centers trained at this node.
func (n *Node) BranchCount() int { return n.model.K() }

// teardown releases the subtree bottom-up: children first, then the model.
func (n *Node) teardown() error {
	if n == nil {
		return nil
	}
	var errs []error
	for i, c := range n.children {
		if err := c.teardown(); err != nil {
			errs = append(errs, err)
		}
		n.children[i] = nil
	}
	n.children = nil
	if n.model != nil {
		if err := n.model.Close(); err != nil {
			errs = append(errs, err)
		}
		n.model = nil
	}
	return errors.Join(errs...)
}
