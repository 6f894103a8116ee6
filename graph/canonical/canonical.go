// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package canonical

import (
	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/transitive"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/logging"
	"github.com/ava-labs/atlasgo/utils/set"
)

// Graph is the trusted subgraph derived from the configured root. Ownership
// transfers to the sink on emit.
type Graph struct {
	Root ids.NodeID
	Tree *tree.Node
	Flat set.Set[ids.NodeID]
}

// Processor derives the canonical graph after every event and decides
// whether it changed. The designated root is immutable for the processor's
// lifetime; the only state it owns is the last emitted hash.
type Processor struct {
	log    logging.Logger
	root   ids.NodeID
	hasher tree.Hasher

	lastHash    uint64
	hasLastHash bool
}

// New returns a processor rooted at [root]
func New(log logging.Logger, root ids.NodeID, hasher tree.Hasher) *Processor {
	return &Processor{
		log:    log,
		root:   root,
		hasher: hasher,
	}
}

// Root returns the designated canonical root
func (p *Processor) Root() ids.NodeID { return p.root }

// LastHash returns the last committed tree hash and whether one exists
func (p *Processor) LastHash() (uint64, bool) { return p.lastHash, p.hasLastHash }

// Restore seeds the committed hash from a snapshot
func (p *Processor) Restore(lastHash uint64) {
	p.lastHash = lastHash
	p.hasLastHash = true
}

// Recompute derives the canonical graph from the current [state]. It
// returns the graph, its tree hash, and whether the hash differs from the
// last committed one. The first computation is always a change.
//
// Recompute does not advance the committed hash; the caller must Commit
// only once the emit is durably acknowledged.
func (p *Processor) Recompute(state *graph.State, cache *transitive.Cache) (*Graph, uint64, bool) {
	// Phase 1: only explicit edges decide canonical membership. Topic
	// edges never expand it.
	explicit := cache.Get(state, p.root, transitive.ExplicitOnly)
	canonicalSet := explicit.Flat.Copy()
	root := explicit.Tree.Clone()

	// Index the explicit skeleton before any attachment: hosts are looked
	// up in the skeleton, never in attached subtrees, and the outer
	// iteration order is the skeleton's document order.
	hosts := []*tree.Node(nil)
	root.Walk(func(n *tree.Node) bool {
		hosts = append(hosts, n)
		return true
	})

	// Phase 2: attach filtered full subtrees along topic edges between
	// nodes that are already canonical. Attachments are additive; a topic
	// attachment may duplicate an explicit edge to the same target.
	for _, host := range hosts {
		for _, topic := range state.SubscribedTopics(host.ID) {
			for _, member := range state.TopicMembers(topic) {
				if !canonicalSet.Contains(member) {
					continue
				}
				full := cache.Get(state, member, transitive.Full)
				attached := full.Tree.Filter(canonicalSet)
				attached.Kind = graph.KindTopic
				attached.ViaTopic = topic
				host.Children = append(host.Children, attached)
			}
		}
	}

	h := p.hasher.Hash(root)
	if p.hasLastHash && h == p.lastHash {
		return nil, h, false
	}
	return &Graph{
		Root: p.root,
		Tree: root,
		Flat: canonicalSet,
	}, h, true
}

// Commit records [h] as the hash of the last durably emitted graph
func (p *Processor) Commit(h uint64) {
	p.lastHash = h
	p.hasLastHash = true
	p.log.Verbo("committed canonical hash %#x", h)
}
