// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transitive

import (
	"sort"

	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/set"
)

// Mode selects which edges a traversal follows
type Mode byte

const (
	// ExplicitOnly follows only Verified and Related edges
	ExplicitOnly Mode = iota
	// Full additionally resolves topic edges through current topic members
	Full
)

func (m Mode) String() string {
	if m == ExplicitOnly {
		return "explicit-only"
	}
	return "full"
}

// Graph is the result of a single-root traversal. It is created lazily,
// discarded on invalidation and never mutated; it shares no structure with
// graph state.
type Graph struct {
	Root ids.NodeID
	Tree *tree.Node
	Flat set.Set[ids.NodeID]
	Hash uint64
}

// A frontier entry is one candidate edge out of the node currently being
// expanded.
type frontierEntry struct {
	target   ids.NodeID
	kind     graph.EdgeKind
	viaTopic ids.TopicID
}

// Compute runs a breadth-first traversal from [root] over [state] and
// returns the spanning tree, reachable set and tree hash. First visit wins,
// which is also what breaks cycles. Child ordering is ascending by node ID;
// competing edges to the same target are collapsed to the smallest
// (kind, topic) entry.
func Compute(state *graph.State, root ids.NodeID, mode Mode, hasher tree.Hasher) *Graph {
	rootNode := &tree.Node{ID: root, Kind: graph.KindRoot}

	visited := set.Of(root)
	treeNodes := map[ids.NodeID]*tree.Node{root: rootNode}
	queue := []ids.NodeID{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		frontier := frontier(state, current, mode)
		parent := treeNodes[current]
		for _, entry := range frontier {
			if visited.Contains(entry.target) {
				continue
			}
			visited.Add(entry.target)
			child := &tree.Node{
				ID:       entry.target,
				Kind:     entry.kind,
				ViaTopic: entry.viaTopic,
			}
			parent.Children = append(parent.Children, child)
			treeNodes[entry.target] = child
			queue = append(queue, entry.target)
		}
	}

	return &Graph{
		Root: root,
		Tree: rootNode,
		Flat: visited,
		Hash: hasher.Hash(rootNode),
	}
}

// frontier composes, orders and dedups the outgoing edges of [current]
func frontier(state *graph.State, current ids.NodeID, mode Mode) []frontierEntry {
	entries := []frontierEntry(nil)
	for _, edge := range state.ExplicitEdges(current) {
		entries = append(entries, frontierEntry{
			target: edge.Target,
			kind:   edge.Kind,
		})
	}
	if mode == Full {
		for _, topic := range state.SubscribedTopics(current) {
			for _, member := range state.TopicMembers(topic) {
				entries = append(entries, frontierEntry{
					target:   member,
					kind:     graph.KindTopic,
					viaTopic: topic,
				})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.target != b.target {
			return a.target.Less(b.target)
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.viaTopic.Less(b.viaTopic)
	})

	// Collapse duplicate targets to the first entry after sorting
	deduped := entries[:0]
	for i, entry := range entries {
		if i == 0 || entry.target != entries[i-1].target {
			deduped = append(deduped, entry)
		}
	}
	return deduped
}
