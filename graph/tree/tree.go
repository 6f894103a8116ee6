// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tree

import (
	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/set"
)

// Node is one vertex of a produced spanning tree. Once a traversal returns a
// tree it is never mutated; anything that wants to extend it clones first.
type Node struct {
	ID   ids.NodeID
	Kind graph.EdgeKind

	// ViaTopic records which topic group a KindTopic edge resolved through.
	// It is the zero value for every other kind.
	ViaTopic ids.TopicID

	// Children are ordered ascending by ID for children produced by a
	// traversal. Topic attachments are appended after and keep their append
	// order.
	Children []*Node
}

// Leaf returns a childless node
func Leaf(id ids.NodeID, kind graph.EdgeKind) *Node {
	return &Node{ID: id, Kind: kind}
}

// Clone returns a deep copy of the tree rooted at [n]
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:       n.ID,
		Kind:     n.Kind,
		ViaTopic: n.ViaTopic,
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Filter returns a deep copy of the tree rooted at [n] retaining only the
// nodes whose IDs are in [keep]. Dropping a node drops its whole subtree.
// Returns nil if [n] itself is dropped.
func (n *Node) Filter(keep set.Set[ids.NodeID]) *Node {
	if !keep.Contains(n.ID) {
		return nil
	}
	filtered := &Node{
		ID:       n.ID,
		Kind:     n.Kind,
		ViaTopic: n.ViaTopic,
	}
	for _, child := range n.Children {
		if kept := child.Filter(keep); kept != nil {
			filtered.Children = append(filtered.Children, kept)
		}
	}
	return filtered
}

// Walk visits the tree rooted at [n] in document order (preorder, children
// in recorded order). Returning false from [visit] stops the walk.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(visit) {
			return false
		}
	}
	return true
}

// Flatten returns the IDs in the tree rooted at [n] in document order.
// Duplicates are possible once topic attachments exist.
func (n *Node) Flatten() []ids.NodeID {
	flat := []ids.NodeID(nil)
	n.Walk(func(node *Node) bool {
		flat = append(flat, node.ID)
		return true
	})
	return flat
}

// NumNodes returns the number of nodes in the tree rooted at [n]
func (n *Node) NumNodes() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
