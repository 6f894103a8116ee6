// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapshot persists graph state, the last emitted hash and the
// source cursor so that a restart can resume mid-stream.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/ava-labs/atlasgo/database"
	"github.com/ava-labs/atlasgo/database/prefixdb"
	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/wrappers"
)

const codecVersion = 0

// The table keys. Each table is one packed record; snapshots are written as
// a whole and small relative to the stream that produced them.
var (
	metaKey          = []byte{0x00}
	nodesKey         = []byte{0x01}
	explicitEdgesKey = []byte{0x02}
	topicEdgesKey    = []byte{0x03}
	membershipsKey   = []byte{0x04}

	errWrongCodecVersion = errors.New("unsupported snapshot codec version")

	maxSnapshotSize = 512 * 1024 * 1024
)

// snapshotPrefix partitions the snapshot tables from anything else sharing
// the database
var snapshotPrefix = []byte("snapshot")

// Store reads and writes snapshots on a database
type Store struct {
	db database.Database
}

// New returns a store backed by [db]. The store claims only its own key
// prefix; the database may be shared.
func New(db database.Database) *Store {
	return &Store{db: prefixdb.New(snapshotPrefix, db)}
}

// Save overwrites the stored snapshot. The caller must guarantee [state] is
// not mutated for the duration of the call.
func (s *Store) Save(state *graph.State, lastHash uint64, hasLastHash bool, cursor engine.Cursor) error {
	meta := wrappers.Packer{MaxSize: maxSnapshotSize}
	meta.PackByte(codecVersion)
	meta.PackLong(lastHash)
	meta.PackBool(hasLastHash)
	meta.PackStr(string(cursor))

	nodes := wrappers.Packer{MaxSize: maxSnapshotSize}
	nodeList := state.NodeList()
	nodes.PackInt(uint32(len(nodeList)))
	for _, node := range nodeList {
		nodes.PackFixedBytes(node.Bytes())
	}

	edges := wrappers.Packer{MaxSize: maxSnapshotSize}
	edges.PackInt(uint32(len(nodeList)))
	for _, node := range nodeList {
		outgoing := state.ExplicitEdges(node)
		edges.PackFixedBytes(node.Bytes())
		edges.PackInt(uint32(len(outgoing)))
		for _, edge := range outgoing {
			edges.PackFixedBytes(edge.Target.Bytes())
			edges.PackByte(byte(edge.Kind))
		}
	}

	topicEdges := wrappers.Packer{MaxSize: maxSnapshotSize}
	topicEdges.PackInt(uint32(len(nodeList)))
	for _, node := range nodeList {
		topics := state.SubscribedTopics(node)
		topicEdges.PackFixedBytes(node.Bytes())
		topicEdges.PackInt(uint32(len(topics)))
		for _, topic := range topics {
			topicEdges.PackFixedBytes(topic.Bytes())
		}
	}

	memberships := wrappers.Packer{MaxSize: maxSnapshotSize}
	memberships.PackInt(uint32(len(nodeList)))
	for _, node := range nodeList {
		topics := state.Memberships(node)
		memberships.PackFixedBytes(node.Bytes())
		memberships.PackInt(uint32(len(topics)))
		for _, topic := range topics {
			memberships.PackFixedBytes(topic.Bytes())
		}
	}

	errs := wrappers.Errs{}
	errs.Add(
		meta.Err, nodes.Err, edges.Err, topicEdges.Err, memberships.Err,
	)
	if errs.Errored() {
		return fmt.Errorf("couldn't serialize snapshot: %w", errs.Err)
	}

	errs.Add(
		s.db.Put(metaKey, meta.Bytes),
		s.db.Put(nodesKey, nodes.Bytes),
		s.db.Put(explicitEdgesKey, edges.Bytes),
		s.db.Put(topicEdgesKey, topicEdges.Bytes),
		s.db.Put(membershipsKey, memberships.Bytes),
	)
	return errs.Err
}

// Load returns the stored snapshot, or found=false if none was saved
func (s *Store) Load() (*graph.State, uint64, bool, engine.Cursor, bool, error) {
	metaBytes, err := s.db.Get(metaKey)
	if err == database.ErrNotFound {
		return nil, 0, false, "", false, nil
	}
	if err != nil {
		return nil, 0, false, "", false, err
	}

	meta := wrappers.Packer{Bytes: metaBytes}
	if version := meta.UnpackByte(); !meta.Errored() && version != codecVersion {
		return nil, 0, false, "", false, fmt.Errorf("%w: %d", errWrongCodecVersion, version)
	}
	lastHash := meta.UnpackLong()
	hasLastHash := meta.UnpackBool()
	cursor := engine.Cursor(meta.UnpackStr())
	if meta.Errored() {
		return nil, 0, false, "", false, fmt.Errorf("couldn't parse snapshot meta: %w", meta.Err)
	}

	// State is rebuilt by replaying the normalized transitions; explicit
	// edge insertion order is the stored order.
	state := graph.NewState()

	if err := s.replay(nodesKey, state, func(p *wrappers.Packer, st *graph.State) error {
		node, err := unpackNodeID(p)
		if err != nil {
			return err
		}
		st.Apply(graph.NodeCreated{Node: node})
		return nil
	}); err != nil {
		return nil, 0, false, "", false, err
	}

	if err := s.replayPerNode(explicitEdgesKey, state, func(p *wrappers.Packer, st *graph.State, node ids.NodeID) error {
		target, err := unpackNodeID(p)
		if err != nil {
			return err
		}
		kind := graph.EdgeKind(p.UnpackByte())
		st.Apply(graph.ExplicitEdgeAdded{Source: node, Target: target, Kind: kind})
		return nil
	}); err != nil {
		return nil, 0, false, "", false, err
	}

	if err := s.replayPerNode(topicEdgesKey, state, func(p *wrappers.Packer, st *graph.State, node ids.NodeID) error {
		topic, err := unpackTopicID(p)
		if err != nil {
			return err
		}
		st.Apply(graph.TopicEdgeAdded{Source: node, Topic: topic})
		return nil
	}); err != nil {
		return nil, 0, false, "", false, err
	}

	if err := s.replayPerNode(membershipsKey, state, func(p *wrappers.Packer, st *graph.State, node ids.NodeID) error {
		topic, err := unpackTopicID(p)
		if err != nil {
			return err
		}
		st.Apply(graph.TopicMembershipAdded{Node: node, Topic: topic})
		return nil
	}); err != nil {
		return nil, 0, false, "", false, err
	}

	return state, lastHash, hasLastHash, cursor, true, nil
}

// replay reads table [key] and calls [unpack] once per record
func (s *Store) replay(key []byte, state *graph.State, unpack func(*wrappers.Packer, *graph.State) error) error {
	raw, err := s.db.Get(key)
	if err != nil {
		return fmt.Errorf("couldn't read snapshot table %#x: %w", key, err)
	}
	p := wrappers.Packer{Bytes: raw}
	count := p.UnpackInt()
	for i := uint32(0); i < count && !p.Errored(); i++ {
		if err := unpack(&p, state); err != nil {
			return err
		}
	}
	if p.Errored() {
		return fmt.Errorf("couldn't parse snapshot table %#x: %w", key, p.Err)
	}
	return nil
}

// replayPerNode reads table [key], whose records are (node, count,
// entries...) groups
func (s *Store) replayPerNode(key []byte, state *graph.State, unpack func(*wrappers.Packer, *graph.State, ids.NodeID) error) error {
	return s.replay(key, state, func(p *wrappers.Packer, st *graph.State) error {
		node, err := unpackNodeID(p)
		if err != nil {
			return err
		}
		count := p.UnpackInt()
		for i := uint32(0); i < count && !p.Errored(); i++ {
			if err := unpack(p, st, node); err != nil {
				return err
			}
		}
		return p.Err
	})
}

func unpackNodeID(p *wrappers.Packer) (ids.NodeID, error) {
	b := p.UnpackFixedBytes(ids.IDLen)
	if p.Errored() {
		return ids.EmptyNodeID, p.Err
	}
	return ids.ToNodeID(b)
}

func unpackTopicID(p *wrappers.Packer) (ids.TopicID, error) {
	b := p.UnpackFixedBytes(ids.IDLen)
	if p.Errored() {
		return ids.EmptyTopicID, p.Err
	}
	return ids.ToTopicID(b)
}
