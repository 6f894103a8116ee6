// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package socket

import (
	"errors"
	"fmt"

	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/canonical"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/set"
	"github.com/ava-labs/atlasgo/utils/wrappers"
)

const wireVersion = 0

var (
	errWrongWireVersion = errors.New("unsupported canonical graph wire version")

	maxGraphSize = 256 * 1024 * 1024
)

// Marshal serializes [g] for publication: version, root, flat set
// (ascending), then the tree as a preorder walk.
func Marshal(g *canonical.Graph) ([]byte, error) {
	p := wrappers.Packer{MaxSize: maxGraphSize}
	p.PackByte(wireVersion)
	p.PackFixedBytes(g.Root.Bytes())

	flat := g.Flat.List()
	ids.SortNodeIDs(flat)
	p.PackInt(uint32(len(flat)))
	for _, node := range flat {
		p.PackFixedBytes(node.Bytes())
	}

	packTree(&p, g.Tree)
	if p.Errored() {
		return nil, fmt.Errorf("couldn't serialize canonical graph: %w", p.Err)
	}
	return p.Bytes, nil
}

// Parse is the inverse of Marshal
func Parse(b []byte) (*canonical.Graph, error) {
	p := wrappers.Packer{Bytes: b}
	if version := p.UnpackByte(); !p.Errored() && version != wireVersion {
		return nil, fmt.Errorf("%w: %d", errWrongWireVersion, version)
	}

	root, err := unpackNodeID(&p)
	if err != nil {
		return nil, err
	}

	flat := set.Set[ids.NodeID]{}
	numFlat := p.UnpackInt()
	for i := uint32(0); i < numFlat && !p.Errored(); i++ {
		node, err := unpackNodeID(&p)
		if err != nil {
			return nil, err
		}
		flat.Add(node)
	}

	treeRoot := unpackTree(&p)
	if p.Errored() {
		return nil, fmt.Errorf("couldn't parse canonical graph: %w", p.Err)
	}
	return &canonical.Graph{
		Root: root,
		Tree: treeRoot,
		Flat: flat,
	}, nil
}

func packTree(p *wrappers.Packer, n *tree.Node) {
	p.PackFixedBytes(n.ID.Bytes())
	p.PackByte(byte(n.Kind))
	p.PackFixedBytes(n.ViaTopic.Bytes())
	p.PackInt(uint32(len(n.Children)))
	for _, child := range n.Children {
		packTree(p, child)
	}
}

func unpackTree(p *wrappers.Packer) *tree.Node {
	id, err := unpackNodeID(p)
	if err != nil {
		return nil
	}
	kind := graph.EdgeKind(p.UnpackByte())
	viaTopicBytes := p.UnpackFixedBytes(ids.IDLen)
	if p.Errored() {
		return nil
	}
	viaTopic, err := ids.ToTopicID(viaTopicBytes)
	if err != nil {
		p.Add(err)
		return nil
	}

	n := &tree.Node{
		ID:       id,
		Kind:     kind,
		ViaTopic: viaTopic,
	}
	numChildren := p.UnpackInt()
	for i := uint32(0); i < numChildren && !p.Errored(); i++ {
		if child := unpackTree(p); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

func unpackNodeID(p *wrappers.Packer) (ids.NodeID, error) {
	b := p.UnpackFixedBytes(ids.IDLen)
	if p.Errored() {
		return ids.EmptyNodeID, p.Err
	}
	return ids.ToNodeID(b)
}
