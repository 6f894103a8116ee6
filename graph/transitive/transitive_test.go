// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transitive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/set"
)

var testHasher = tree.NewHasher(0)

func topicPtr(t ids.TopicID) *ids.TopicID { return &t }

func apply(s *graph.State, events ...graph.Event) {
	for _, ev := range events {
		s.Apply(ev)
	}
}

func TestComputeAbsentRoot(t *testing.T) {
	require := require.New(t)

	root := ids.BuildTestNodeID(1)
	g := Compute(graph.NewState(), root, Full, testHasher)
	require.Equal(root, g.Root)
	require.True(g.Flat.Equals(set.Of(root)))
	require.Equal(graph.KindRoot, g.Tree.Kind)
	require.Empty(g.Tree.Children)
}

func TestComputeChain(t *testing.T) {
	require := require.New(t)

	n1, n2, n3 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2), ids.BuildTestNodeID(3)
	s := graph.NewState()
	apply(s,
		graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified},
		graph.ExplicitEdgeAdded{Source: n2, Target: n3, Kind: graph.KindRelated},
	)

	g := Compute(s, n1, ExplicitOnly, testHasher)
	require.True(g.Flat.Equals(set.Of(n1, n2, n3)))
	require.Len(g.Tree.Children, 1)
	require.Equal(n2, g.Tree.Children[0].ID)
	require.Equal(graph.KindVerified, g.Tree.Children[0].Kind)
	require.Len(g.Tree.Children[0].Children, 1)
	require.Equal(n3, g.Tree.Children[0].Children[0].ID)
	require.Equal(graph.KindRelated, g.Tree.Children[0].Children[0].Kind)
}

func TestComputeCycleBroken(t *testing.T) {
	require := require.New(t)

	n1, n2, n3 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2), ids.BuildTestNodeID(3)
	s := graph.NewState()
	apply(s,
		graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified},
		graph.ExplicitEdgeAdded{Source: n2, Target: n3, Kind: graph.KindVerified},
		graph.ExplicitEdgeAdded{Source: n3, Target: n1, Kind: graph.KindVerified},
	)

	g := Compute(s, n1, ExplicitOnly, testHasher)
	require.True(g.Flat.Equals(set.Of(n1, n2, n3)))

	// The back edge n3 -> n1 is silently dropped
	require.Equal([]ids.NodeID{n1, n2, n3}, g.Tree.Flatten())

	// Distinct ids along any root-to-leaf path
	require.Equal(3, g.Tree.NumNodes())

	// Deterministic across runs
	require.Equal(g.Hash, Compute(s, n1, ExplicitOnly, testHasher).Hash)
}

func TestComputeChildOrdering(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	n5, n3, n9 := ids.BuildTestNodeID(5), ids.BuildTestNodeID(3), ids.BuildTestNodeID(9)
	s := graph.NewState()
	apply(s,
		graph.ExplicitEdgeAdded{Source: n1, Target: n5, Kind: graph.KindVerified},
		graph.ExplicitEdgeAdded{Source: n1, Target: n3, Kind: graph.KindVerified},
		graph.ExplicitEdgeAdded{Source: n1, Target: n9, Kind: graph.KindVerified},
	)

	g := Compute(s, n1, ExplicitOnly, testHasher)
	require.Equal([]ids.NodeID{n3, n5, n9}, []ids.NodeID{
		g.Tree.Children[0].ID,
		g.Tree.Children[1].ID,
		g.Tree.Children[2].ID,
	})
}

func TestComputeModes(t *testing.T) {
	require := require.New(t)

	n1, n2, n3 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2), ids.BuildTestNodeID(3)
	t1 := ids.BuildTestTopicID(1)
	s := graph.NewState()
	apply(s,
		graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified},
		graph.NodeCreated{Node: n3, Topic: topicPtr(t1)},
		graph.TopicEdgeAdded{Source: n2, Topic: t1},
	)

	// Explicit-only ignores topic resolution
	g := Compute(s, n1, ExplicitOnly, testHasher)
	require.True(g.Flat.Equals(set.Of(n1, n2)))

	// Full resolves n2's topic edge through t1's membership
	g = Compute(s, n1, Full, testHasher)
	require.True(g.Flat.Equals(set.Of(n1, n2, n3)))

	via := g.Tree.Children[0].Children[0]
	require.Equal(n3, via.ID)
	require.Equal(graph.KindTopic, via.Kind)
	require.Equal(t1, via.ViaTopic)
}

func TestComputeEmptyTopic(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	t1 := ids.BuildTestTopicID(1)
	s := graph.NewState()
	apply(s, graph.TopicEdgeAdded{Source: n1, Topic: t1})

	// A topic with no members contributes no edges
	g := Compute(s, n1, Full, testHasher)
	require.True(g.Flat.Equals(set.Of(n1)))
}

func TestComputeTieBreaks(t *testing.T) {
	require := require.New(t)

	n1, n2 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2)
	t1, t2 := ids.BuildTestTopicID(1), ids.BuildTestTopicID(2)
	s := graph.NewState()
	apply(s,
		// n2 is reachable explicitly and through both topics
		graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindRelated},
		graph.NodeCreated{Node: n2, Topic: topicPtr(t1)},
		graph.TopicMembershipAdded{Node: n2, Topic: t2},
		graph.TopicEdgeAdded{Source: n1, Topic: t1},
		graph.TopicEdgeAdded{Source: n1, Topic: t2},
	)

	// The explicit edge wins the tie for the single tree slot
	g := Compute(s, n1, Full, testHasher)
	require.Len(g.Tree.Children, 1)
	require.Equal(n2, g.Tree.Children[0].ID)
	require.Equal(graph.KindRelated, g.Tree.Children[0].Kind)
	require.Equal(ids.EmptyTopicID, g.Tree.Children[0].ViaTopic)
}

func TestComputeTopicOnlyTieBreak(t *testing.T) {
	require := require.New(t)

	n1, n2 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2)
	t1, t2 := ids.BuildTestTopicID(1), ids.BuildTestTopicID(2)
	s := graph.NewState()
	apply(s,
		graph.NodeCreated{Node: n1},
		graph.NodeCreated{Node: n2, Topic: topicPtr(t1)},
		graph.TopicMembershipAdded{Node: n2, Topic: t2},
		graph.TopicEdgeAdded{Source: n1, Topic: t2},
		graph.TopicEdgeAdded{Source: n1, Topic: t1},
	)

	// With only topic edges competing, the ascending topic id wins
	g := Compute(s, n1, Full, testHasher)
	require.Len(g.Tree.Children, 1)
	require.Equal(graph.KindTopic, g.Tree.Children[0].Kind)
	require.Equal(t1, g.Tree.Children[0].ViaTopic)
}
