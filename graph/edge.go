// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import "github.com/ava-labs/atlasgo/ids"

// EdgeKind labels how a node was attached to its parent in a traversal, or
// what relation an explicit edge records.
type EdgeKind byte

const (
	// KindVerified is an explicit edge to a space the source has verified
	KindVerified EdgeKind = iota
	// KindRelated is an explicit edge to a space the source considers related
	KindRelated
	// KindTopic is an edge resolved through a topic group at traversal time
	KindTopic
	// KindRoot is the synthetic parent edge of a traversal root
	KindRoot
)

func (k EdgeKind) String() string {
	switch k {
	case KindVerified:
		return "verified"
	case KindRelated:
		return "related"
	case KindTopic:
		return "topic"
	case KindRoot:
		return "root"
	default:
		return "unknown"
	}
}

// Edge is an explicit node-to-node edge. Only KindVerified and KindRelated
// appear in graph state; KindTopic and KindRoot exist in produced trees.
type Edge struct {
	Target ids.NodeID
	Kind   EdgeKind
}
