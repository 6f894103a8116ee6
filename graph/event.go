// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import "github.com/ava-labs/atlasgo/ids"

// Event is one element of the ordered topology stream. The set of variants
// is closed; the dispatcher pattern matches on the concrete type so that
// every state mutation lives in one place.
type Event interface {
	event()
}

// NodeCreated reports that a space was announced. If [Topic] is non-nil the
// announcement carried a topic membership, which is equivalent to a
// NodeCreated without a topic followed by a TopicMembershipAdded.
type NodeCreated struct {
	Node  ids.NodeID
	Topic *ids.TopicID
}

// ExplicitEdgeAdded reports a new direct edge. [Kind] must be KindVerified
// or KindRelated. Re-adding an existing (source, target, kind) edge is a
// no-op; re-adding with a different kind updates the kind in place.
type ExplicitEdgeAdded struct {
	Source ids.NodeID
	Target ids.NodeID
	Kind   EdgeKind
}

// ExplicitEdgeRemoved removes any direct edge between [Source] and [Target]
type ExplicitEdgeRemoved struct {
	Source ids.NodeID
	Target ids.NodeID
}

// TopicEdgeAdded records that [Source] subscribes to [Topic]
type TopicEdgeAdded struct {
	Source ids.NodeID
	Topic  ids.TopicID
}

// TopicEdgeRemoved removes [Source]'s subscription to [Topic]
type TopicEdgeRemoved struct {
	Source ids.NodeID
	Topic  ids.TopicID
}

// TopicMembershipAdded records that [Node] announced membership in [Topic]
type TopicMembershipAdded struct {
	Node  ids.NodeID
	Topic ids.TopicID
}

// TopicMembershipRemoved removes [Node]'s membership in [Topic]
type TopicMembershipRemoved struct {
	Node  ids.NodeID
	Topic ids.TopicID
}

// Reorg is a reorganization signal from the source. It never mutates graph
// state; the dispatcher hands it to the recovery collaborator and resumes at
// the cursor that collaborator returns.
type Reorg struct {
	// LastValidCursor is the newest cursor the source still stands behind
	LastValidCursor string
}

func (NodeCreated) event()            {}
func (ExplicitEdgeAdded) event()      {}
func (ExplicitEdgeRemoved) event()    {}
func (TopicEdgeAdded) event()         {}
func (TopicEdgeRemoved) event()       {}
func (TopicMembershipAdded) event()   {}
func (TopicMembershipRemoved) event() {}
func (Reorg) event()                  {}
