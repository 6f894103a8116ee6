// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import "sync/atomic"

var offset uint64

// GenerateTestNodeID returns a new node ID that should only be used for
// testing
func GenerateTestNodeID() NodeID {
	n := atomic.AddUint64(&offset, 1)
	id := NodeID{}
	for i := 0; i < 8; i++ {
		id[i] = byte(n >> (8 * i))
	}
	return id
}

// BuildTestNodeID returns the node ID with only byte 0 set to [b]
func BuildTestNodeID(b byte) NodeID {
	return NodeID{b}
}

// BuildTestTopicID returns the topic ID with only byte 0 set to [b]
func BuildTestTopicID(b byte) TopicID {
	return TopicID{b}
}
