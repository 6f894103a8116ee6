// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package socket

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/canonical"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/set"
)

func testGraph() *canonical.Graph {
	n1 := ids.BuildTestNodeID(1)
	n2 := ids.BuildTestNodeID(2)
	n3 := ids.BuildTestNodeID(3)
	t1 := ids.BuildTestTopicID(1)

	return &canonical.Graph{
		Root: n1,
		Flat: set.Of(n1, n2, n3),
		Tree: &tree.Node{
			ID:   n1,
			Kind: graph.KindRoot,
			Children: []*tree.Node{
				{
					ID:   n2,
					Kind: graph.KindVerified,
					Children: []*tree.Node{
						{ID: n3, Kind: graph.KindRelated},
					},
				},
				{ID: n3, Kind: graph.KindTopic, ViaTopic: t1},
			},
		},
	}
}

func TestGraphWireRoundTrip(t *testing.T) {
	require := require.New(t)

	g := testGraph()
	payload, err := Marshal(g)
	require.NoError(err)

	parsed, err := Parse(payload)
	require.NoError(err)
	require.Equal(g.Root, parsed.Root)
	require.True(g.Flat.Equals(parsed.Flat))
	require.Equal(g.Tree, parsed.Tree)
}

func TestParseRejectsGarbage(t *testing.T) {
	require := require.New(t)

	_, err := Parse(nil)
	require.Error(err)

	_, err = Parse([]byte{wireVersion + 1})
	require.Error(err)

	payload, err := Marshal(testGraph())
	require.NoError(err)
	_, err = Parse(payload[:len(payload)-3])
	require.Error(err)
}

func TestMarshalDeterministic(t *testing.T) {
	require := require.New(t)

	a, err := Marshal(testGraph())
	require.NoError(err)
	b, err := Marshal(testGraph())
	require.NoError(err)
	require.Equal(a, b)
}
