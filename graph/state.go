// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"fmt"

	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/set"
)

// State is the authoritative in-memory topology. It is exclusively owned by
// the dispatcher; traversals borrow it read-only. Every transition is total:
// unknown references are materialized rather than rejected.
type State struct {
	nodes set.Set[ids.NodeID]

	// explicitEdges preserves insertion order per source. A (source, target)
	// pair appears at most once.
	explicitEdges map[ids.NodeID][]Edge

	// topicEdges[s] holds the topics s subscribes to
	topicEdges map[ids.NodeID]set.Set[ids.TopicID]

	// topicMembers[t] holds the nodes that announced membership in t
	topicMembers map[ids.TopicID]set.Set[ids.NodeID]

	// topicEdgeSources is the exact mirror of [topicEdges]:
	// t in topicEdges[s] iff s in topicEdgeSources[t]
	topicEdgeSources map[ids.TopicID]set.Set[ids.NodeID]
}

// NewState returns an empty topology
func NewState() *State {
	return &State{
		nodes:            set.Set[ids.NodeID]{},
		explicitEdges:    make(map[ids.NodeID][]Edge),
		topicEdges:       make(map[ids.NodeID]set.Set[ids.TopicID]),
		topicMembers:     make(map[ids.TopicID]set.Set[ids.NodeID]),
		topicEdgeSources: make(map[ids.TopicID]set.Set[ids.NodeID]),
	}
}

// Apply transitions the state by [ev]. Reorg signals are ignored here; they
// are handled upstream by the dispatcher.
func (s *State) Apply(ev Event) {
	switch ev := ev.(type) {
	case NodeCreated:
		s.ensureNode(ev.Node)
		if ev.Topic != nil {
			s.addMembership(ev.Node, *ev.Topic)
		}
	case ExplicitEdgeAdded:
		s.addExplicitEdge(ev.Source, ev.Target, ev.Kind)
	case ExplicitEdgeRemoved:
		s.removeExplicitEdge(ev.Source, ev.Target)
	case TopicEdgeAdded:
		s.addTopicEdge(ev.Source, ev.Topic)
	case TopicEdgeRemoved:
		s.removeTopicEdge(ev.Source, ev.Topic)
	case TopicMembershipAdded:
		s.ensureNode(ev.Node)
		s.addMembership(ev.Node, ev.Topic)
	case TopicMembershipRemoved:
		s.removeMembership(ev.Node, ev.Topic)
	case Reorg:
	}
}

func (s *State) ensureNode(node ids.NodeID) {
	s.nodes.Add(node)
}

func (s *State) addExplicitEdge(source, target ids.NodeID, kind EdgeKind) {
	s.ensureNode(source)
	s.ensureNode(target)

	edges := s.explicitEdges[source]
	for i, edge := range edges {
		if edge.Target == target {
			// The pair already exists. Same kind is a no-op; a different
			// kind updates in place, keeping the original position.
			edges[i].Kind = kind
			return
		}
	}
	s.explicitEdges[source] = append(edges, Edge{Target: target, Kind: kind})
}

func (s *State) removeExplicitEdge(source, target ids.NodeID) {
	edges := s.explicitEdges[source]
	for i, edge := range edges {
		if edge.Target == target {
			edges = append(edges[:i], edges[i+1:]...)
			if len(edges) == 0 {
				delete(s.explicitEdges, source)
			} else {
				s.explicitEdges[source] = edges
			}
			return
		}
	}
}

func (s *State) addTopicEdge(source ids.NodeID, topic ids.TopicID) {
	s.ensureNode(source)

	topics, ok := s.topicEdges[source]
	if !ok {
		topics = set.Set[ids.TopicID]{}
		s.topicEdges[source] = topics
	}
	topics.Add(topic)

	sources, ok := s.topicEdgeSources[topic]
	if !ok {
		sources = set.Set[ids.NodeID]{}
		s.topicEdgeSources[topic] = sources
	}
	sources.Add(source)
}

func (s *State) removeTopicEdge(source ids.NodeID, topic ids.TopicID) {
	if topics, ok := s.topicEdges[source]; ok {
		topics.Remove(topic)
		if topics.Len() == 0 {
			delete(s.topicEdges, source)
		}
	}
	if sources, ok := s.topicEdgeSources[topic]; ok {
		sources.Remove(source)
		if sources.Len() == 0 {
			delete(s.topicEdgeSources, topic)
		}
	}
}

func (s *State) addMembership(node ids.NodeID, topic ids.TopicID) {
	members, ok := s.topicMembers[topic]
	if !ok {
		members = set.Set[ids.NodeID]{}
		s.topicMembers[topic] = members
	}
	members.Add(node)
}

func (s *State) removeMembership(node ids.NodeID, topic ids.TopicID) {
	if members, ok := s.topicMembers[topic]; ok {
		members.Remove(node)
		if members.Len() == 0 {
			delete(s.topicMembers, topic)
		}
	}
}

// HasNode returns true iff [node] is known
func (s *State) HasNode(node ids.NodeID) bool {
	return s.nodes.Contains(node)
}

// NumNodes returns the number of known nodes
func (s *State) NumNodes() int {
	return s.nodes.Len()
}

// NodeList returns every known node, ascending
func (s *State) NodeList() []ids.NodeID {
	nodes := s.nodes.List()
	ids.SortNodeIDs(nodes)
	return nodes
}

// ExplicitEdges returns the outgoing explicit edges of [source] in insertion
// order. The returned slice is borrowed; callers must not mutate it.
func (s *State) ExplicitEdges(source ids.NodeID) []Edge {
	return s.explicitEdges[source]
}

// SubscribedTopics returns the topics [source] has an edge toward,
// ascending
func (s *State) SubscribedTopics(source ids.NodeID) []ids.TopicID {
	topics := s.topicEdges[source].List()
	ids.SortTopicIDs(topics)
	return topics
}

// HasTopicEdges returns true iff [source] subscribes to at least one topic
func (s *State) HasTopicEdges(source ids.NodeID) bool {
	return s.topicEdges[source].Len() > 0
}

// TopicMembers returns the members of [topic], ascending
func (s *State) TopicMembers(topic ids.TopicID) []ids.NodeID {
	members := s.topicMembers[topic].List()
	ids.SortNodeIDs(members)
	return members
}

// TopicEdgeSources returns the nodes with an edge toward [topic],
// ascending
func (s *State) TopicEdgeSources(topic ids.TopicID) []ids.NodeID {
	sources := s.topicEdgeSources[topic].List()
	ids.SortNodeIDs(sources)
	return sources
}

// Memberships returns the topics [node] has announced, ascending
func (s *State) Memberships(node ids.NodeID) []ids.TopicID {
	topics := []ids.TopicID(nil)
	for topic, members := range s.topicMembers {
		if members.Contains(node) {
			topics = append(topics, topic)
		}
	}
	ids.SortTopicIDs(topics)
	return topics
}

// CheckInvariants verifies the internal consistency of this state. A non-nil
// return is fatal for the process; it means downstream data can no longer be
// trusted.
func (s *State) CheckInvariants() error {
	for source, topics := range s.topicEdges {
		if topics.Len() == 0 {
			return fmt.Errorf("empty topic edge set retained for %s", source)
		}
		for topic := range topics {
			if !s.topicEdgeSources[topic].Contains(source) {
				return fmt.Errorf("topic edge %s -> %s missing from reverse index", source, topic)
			}
		}
	}
	for topic, sources := range s.topicEdgeSources {
		if sources.Len() == 0 {
			return fmt.Errorf("empty topic edge source set retained for %s", topic)
		}
		for source := range sources {
			if !s.topicEdges[source].Contains(topic) {
				return fmt.Errorf("reverse index %s -> %s missing from topic edges", topic, source)
			}
		}
	}
	for source, edges := range s.explicitEdges {
		if !s.nodes.Contains(source) {
			return fmt.Errorf("edge source %s is not a known node", source)
		}
		seen := set.Set[ids.NodeID]{}
		for _, edge := range edges {
			if edge.Kind != KindVerified && edge.Kind != KindRelated {
				return fmt.Errorf("explicit edge %s -> %s has kind %s", source, edge.Target, edge.Kind)
			}
			if !s.nodes.Contains(edge.Target) {
				return fmt.Errorf("edge target %s is not a known node", edge.Target)
			}
			if seen.Contains(edge.Target) {
				return fmt.Errorf("duplicate explicit edge %s -> %s", source, edge.Target)
			}
			seen.Add(edge.Target)
		}
	}
	for _, sets := range []map[ids.TopicID]set.Set[ids.NodeID]{s.topicMembers, s.topicEdgeSources} {
		for topic, nodes := range sets {
			for node := range nodes {
				if !s.nodes.Contains(node) {
					return fmt.Errorf("node %s referenced by topic %s is unknown", node, topic)
				}
			}
		}
	}
	for source := range s.topicEdges {
		if !s.nodes.Contains(source) {
			return fmt.Errorf("topic edge source %s is not a known node", source)
		}
	}
	return nil
}

// Equal returns true iff [other] holds exactly the same topology, including
// explicit edge insertion order.
func (s *State) Equal(other *State) bool {
	if !s.nodes.Equals(other.nodes) || len(s.explicitEdges) != len(other.explicitEdges) ||
		len(s.topicEdges) != len(other.topicEdges) || len(s.topicMembers) != len(other.topicMembers) {
		return false
	}
	for source, edges := range s.explicitEdges {
		otherEdges := other.explicitEdges[source]
		if len(edges) != len(otherEdges) {
			return false
		}
		for i, edge := range edges {
			if otherEdges[i] != edge {
				return false
			}
		}
	}
	for source, topics := range s.topicEdges {
		if !topics.Equals(other.topicEdges[source]) {
			return false
		}
	}
	for topic, members := range s.topicMembers {
		if !members.Equals(other.topicMembers[topic]) {
			return false
		}
	}
	return true
}
