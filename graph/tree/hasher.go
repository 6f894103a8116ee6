// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tree

import "encoding/binary"

// DefaultSeed is used when no seed is configured, so that independent
// processes agree on hashes. Snapshots persist hashes computed with this
// seed; do not change it.
const DefaultSeed uint64 = 0xa77a50b5e55e17ab

// Hasher folds a tree into a 64 bit fingerprint with a deterministic
// post-order walk. The mix is splitmix64; it is not cryptographic and only
// needs to be stable across processes and implementations.
type Hasher struct {
	Seed uint64
}

// NewHasher returns a hasher with [seed], or the default seed if [seed] is
// zero
func NewHasher(seed uint64) Hasher {
	if seed == 0 {
		seed = DefaultSeed
	}
	return Hasher{Seed: seed}
}

// Hash returns the fingerprint of the tree rooted at [n]
func (h Hasher) Hash(n *Node) uint64 {
	childHashes := make([]uint64, len(n.Children))
	for i, child := range n.Children {
		childHashes[i] = h.Hash(child)
	}

	v := h.Seed
	v = absorb(v, binary.BigEndian.Uint64(n.ID[:8]))
	v = absorb(v, binary.BigEndian.Uint64(n.ID[8:]))
	v = absorb(v, uint64(n.Kind))
	v = absorb(v, binary.BigEndian.Uint64(n.ViaTopic[:8]))
	v = absorb(v, binary.BigEndian.Uint64(n.ViaTopic[8:]))
	v = absorb(v, uint64(len(n.Children)))
	for _, childHash := range childHashes {
		v = absorb(v, childHash)
	}
	return v
}

func absorb(v, w uint64) uint64 {
	return mix(v ^ (w + 0x9e3779b97f4a7c15 + (v << 6) + (v >> 2)))
}

// mix is the splitmix64 finalizer
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
