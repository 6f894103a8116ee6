// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ava-labs/atlasgo/utils/cb58"
)

// IDLen is the number of bytes in a node or topic ID.
const IDLen = 16

var (
	// EmptyNodeID is a useful all-zero value
	EmptyNodeID = NodeID{}
	// EmptyTopicID is a useful all-zero value
	EmptyTopicID = TopicID{}
)

// NodeID identifies a space in the topology. IDs are opaque; the only
// ordering they carry is the unsigned lexicographic order used for
// deterministic tie-breaks.
type NodeID [IDLen]byte

// ToNodeID attempts to convert a byte slice into a node ID
func ToNodeID(b []byte) (NodeID, error) {
	var id NodeID
	if len(b) != IDLen {
		return id, fmt.Errorf("expected %d bytes but got %d", IDLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// NodeIDFromString is the inverse of NodeID.String()
func NodeIDFromString(s string) (NodeID, error) {
	b, err := cb58.Decode(s)
	if err != nil {
		return NodeID{}, err
	}
	return ToNodeID(b)
}

func (id NodeID) Bytes() []byte { return id[:] }

func (id NodeID) String() string {
	// We assume that the maximum size of a byte slice that
	// can be stringified is at least the length of an ID
	s, _ := cb58.Encode(id[:])
	return s
}

// Less returns true if [id] is strictly less than [other]
func (id NodeID) Less(other NodeID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// TopicID identifies a topic group. Same representation and ordering
// semantics as NodeID, but the two are never interchangeable.
type TopicID [IDLen]byte

// ToTopicID attempts to convert a byte slice into a topic ID
func ToTopicID(b []byte) (TopicID, error) {
	var id TopicID
	if len(b) != IDLen {
		return id, fmt.Errorf("expected %d bytes but got %d", IDLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// TopicIDFromString is the inverse of TopicID.String()
func TopicIDFromString(s string) (TopicID, error) {
	b, err := cb58.Decode(s)
	if err != nil {
		return TopicID{}, err
	}
	return ToTopicID(b)
}

func (id TopicID) Bytes() []byte { return id[:] }

func (id TopicID) String() string {
	s, _ := cb58.Encode(id[:])
	return s
}

// Less returns true if [id] is strictly less than [other]
func (id TopicID) Less(other TopicID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// SortNodeIDs sorts [nodes] in place, ascending
func SortNodeIDs(nodes []NodeID) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
}

// SortTopicIDs sorts [topics] in place, ascending
func SortTopicIDs(topics []TopicID) {
	sort.Slice(topics, func(i, j int) bool { return topics[i].Less(topics[j]) })
}

// IsSortedAndUniqueNodeIDs returns true iff [nodes] is strictly increasing
func IsSortedAndUniqueNodeIDs(nodes []NodeID) bool {
	for i := 0; i < len(nodes)-1; i++ {
		if !nodes[i].Less(nodes[i+1]) {
			return false
		}
	}
	return true
}
