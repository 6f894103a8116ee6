// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"errors"
	"fmt"

	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/wrappers"
)

// Wire ops. These values are the source stream's event format; do not
// renumber.
const (
	opNodeCreated byte = iota
	opNodeCreatedWithTopic
	opExplicitEdgeAdded
	opExplicitEdgeRemoved
	opTopicEdgeAdded
	opTopicEdgeRemoved
	opTopicMembershipAdded
	opTopicMembershipRemoved
	opReorg
)

var (
	errUnknownOp       = errors.New("unknown event op")
	errUnknownEdgeKind = errors.New("unknown explicit edge kind")
	errTrailingBytes   = errors.New("trailing bytes after event")
)

// ParseEvent deserializes an event from its wire format. A structurally
// impossible payload (wrong-length identifier, unknown op, bad kind) returns
// an error and is the boundary where malformed events are rejected before
// they can touch state.
func ParseEvent(b []byte) (Event, error) {
	p := wrappers.Packer{Bytes: b}
	op := p.UnpackByte()

	var ev Event
	switch op {
	case opNodeCreated:
		ev = NodeCreated{Node: unpackNodeID(&p)}
	case opNodeCreatedWithTopic:
		node := unpackNodeID(&p)
		topic := unpackTopicID(&p)
		ev = NodeCreated{Node: node, Topic: &topic}
	case opExplicitEdgeAdded:
		source := unpackNodeID(&p)
		target := unpackNodeID(&p)
		kind := EdgeKind(p.UnpackByte())
		if !p.Errored() && kind != KindVerified && kind != KindRelated {
			return nil, fmt.Errorf("%w: %d", errUnknownEdgeKind, kind)
		}
		ev = ExplicitEdgeAdded{Source: source, Target: target, Kind: kind}
	case opExplicitEdgeRemoved:
		ev = ExplicitEdgeRemoved{Source: unpackNodeID(&p), Target: unpackNodeID(&p)}
	case opTopicEdgeAdded:
		ev = TopicEdgeAdded{Source: unpackNodeID(&p), Topic: unpackTopicID(&p)}
	case opTopicEdgeRemoved:
		ev = TopicEdgeRemoved{Source: unpackNodeID(&p), Topic: unpackTopicID(&p)}
	case opTopicMembershipAdded:
		ev = TopicMembershipAdded{Node: unpackNodeID(&p), Topic: unpackTopicID(&p)}
	case opTopicMembershipRemoved:
		ev = TopicMembershipRemoved{Node: unpackNodeID(&p), Topic: unpackTopicID(&p)}
	case opReorg:
		ev = Reorg{LastValidCursor: p.UnpackStr()}
	default:
		if p.Errored() {
			return nil, p.Err
		}
		return nil, fmt.Errorf("%w: %d", errUnknownOp, op)
	}

	if p.Errored() {
		return nil, p.Err
	}
	if p.Offset != len(b) {
		return nil, errTrailingBytes
	}
	return ev, nil
}

// MarshalEvent serializes [ev] to its wire format
func MarshalEvent(ev Event) []byte {
	p := wrappers.Packer{MaxSize: 64 + len(reorgCursor(ev))}
	switch ev := ev.(type) {
	case NodeCreated:
		if ev.Topic != nil {
			p.PackByte(opNodeCreatedWithTopic)
			p.PackFixedBytes(ev.Node.Bytes())
			p.PackFixedBytes(ev.Topic.Bytes())
		} else {
			p.PackByte(opNodeCreated)
			p.PackFixedBytes(ev.Node.Bytes())
		}
	case ExplicitEdgeAdded:
		p.PackByte(opExplicitEdgeAdded)
		p.PackFixedBytes(ev.Source.Bytes())
		p.PackFixedBytes(ev.Target.Bytes())
		p.PackByte(byte(ev.Kind))
	case ExplicitEdgeRemoved:
		p.PackByte(opExplicitEdgeRemoved)
		p.PackFixedBytes(ev.Source.Bytes())
		p.PackFixedBytes(ev.Target.Bytes())
	case TopicEdgeAdded:
		p.PackByte(opTopicEdgeAdded)
		p.PackFixedBytes(ev.Source.Bytes())
		p.PackFixedBytes(ev.Topic.Bytes())
	case TopicEdgeRemoved:
		p.PackByte(opTopicEdgeRemoved)
		p.PackFixedBytes(ev.Source.Bytes())
		p.PackFixedBytes(ev.Topic.Bytes())
	case TopicMembershipAdded:
		p.PackByte(opTopicMembershipAdded)
		p.PackFixedBytes(ev.Node.Bytes())
		p.PackFixedBytes(ev.Topic.Bytes())
	case TopicMembershipRemoved:
		p.PackByte(opTopicMembershipRemoved)
		p.PackFixedBytes(ev.Node.Bytes())
		p.PackFixedBytes(ev.Topic.Bytes())
	case Reorg:
		p.PackByte(opReorg)
		p.PackStr(ev.LastValidCursor)
	}
	return p.Bytes
}

func reorgCursor(ev Event) string {
	if r, ok := ev.(Reorg); ok {
		return r.LastValidCursor
	}
	return ""
}

func unpackNodeID(p *wrappers.Packer) ids.NodeID {
	b := p.UnpackFixedBytes(ids.IDLen)
	if p.Errored() {
		return ids.EmptyNodeID
	}
	id, err := ids.ToNodeID(b)
	p.Add(err)
	return id
}

func unpackTopicID(p *wrappers.Packer) ids.TopicID {
	b := p.UnpackFixedBytes(ids.IDLen)
	if p.Errored() {
		return ids.EmptyTopicID
	}
	id, err := ids.ToTopicID(b)
	p.Add(err)
	return id
}
