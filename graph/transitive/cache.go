// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transitive

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/atlasgo/cache"
	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/logging"
	"github.com/ava-labs/atlasgo/utils/set"
)

// Cache memoizes per-root transitive graphs in both variants and tracks
// reverse dependencies so that an event only invalidates the roots it can
// actually affect.
//
// Cache is not safe for concurrent use; the dispatcher is the only writer.
type Cache struct {
	log     logging.Logger
	hasher  tree.Hasher
	metrics metrics

	full         cache.LRU[ids.NodeID, *Graph]
	explicitOnly cache.LRU[ids.NodeID, *Graph]

	// reverseDeps[n] holds the roots whose cached graphs include n. When
	// n's local topology changes, those roots are stale.
	reverseDeps map[ids.NodeID]set.Set[ids.NodeID]
}

// NewCache returns a transitive graph cache. [entryCap] bounds each variant
// independently; zero means unbounded.
func NewCache(
	log logging.Logger,
	hasher tree.Hasher,
	entryCap int,
	namespace string,
	registerer prometheus.Registerer,
) (*Cache, error) {
	c := &Cache{
		log:         log,
		hasher:      hasher,
		reverseDeps: make(map[ids.NodeID]set.Set[ids.NodeID]),
	}
	c.full.Size = entryCap
	c.explicitOnly.Size = entryCap
	// A capacity eviction drops the entry but leaves its reverse
	// dependencies in place. Stale reverse dependencies can only cause
	// spurious invalidations, never a stale read; they are purged when the
	// root is eventually invalidated.
	c.full.OnEvict = func(ids.NodeID, *Graph) { c.metrics.evicted.Inc() }
	c.explicitOnly.OnEvict = c.full.OnEvict
	return c, c.metrics.Initialize(namespace, registerer)
}

// Get returns the transitive graph of [root] in [mode], computing and
// memoizing it if needed. [state] must be the current graph state.
func (c *Cache) Get(state *graph.State, root ids.NodeID, mode Mode) *Graph {
	variant := c.variant(mode)
	if g, ok := variant.Get(root); ok {
		c.metrics.hits.Inc()
		return g
	}
	c.metrics.misses.Inc()

	g := Compute(state, root, mode, c.hasher)
	variant.Put(root, g)
	for node := range g.Flat {
		deps, ok := c.reverseDeps[node]
		if !ok {
			deps = set.Set[ids.NodeID]{}
			c.reverseDeps[node] = deps
		}
		deps.Add(root)
	}
	return g
}

// Invalidate drops every cached graph that [ev] can affect. [state] must be
// the state the event has NOT yet been applied to: resolving which roots
// depend on the touched nodes requires the topology that is about to become
// stale.
func (c *Cache) Invalidate(ev graph.Event, state *graph.State) {
	stale := set.Set[ids.NodeID]{}
	switch ev := ev.(type) {
	case graph.ExplicitEdgeAdded:
		c.addStale(stale, ev.Source)
		c.addStale(stale, ev.Target)
	case graph.ExplicitEdgeRemoved:
		c.addStale(stale, ev.Source)
		c.addStale(stale, ev.Target)
	case graph.TopicEdgeAdded:
		c.addStale(stale, ev.Source)
	case graph.TopicEdgeRemoved:
		c.addStale(stale, ev.Source)
	case graph.NodeCreated:
		if ev.Topic != nil {
			c.addStaleTopic(stale, state, *ev.Topic)
		}
	case graph.TopicMembershipAdded:
		c.addStaleTopic(stale, state, ev.Topic)
	case graph.TopicMembershipRemoved:
		c.addStaleTopic(stale, state, ev.Topic)
	}
	if stale.Len() == 0 {
		return
	}

	c.log.Verbo("invalidating %d cached roots", stale.Len())
	for root := range stale {
		c.full.Evict(root)
		c.explicitOnly.Evict(root)
		c.metrics.invalidated.Inc()
	}
	for node, deps := range c.reverseDeps {
		for root := range stale {
			deps.Remove(root)
		}
		if deps.Len() == 0 {
			delete(c.reverseDeps, node)
		}
	}
}

// Len returns the number of cached graphs across both variants
func (c *Cache) Len() int {
	return c.full.Len() + c.explicitOnly.Len()
}

// Flush drops every cached graph and all reverse dependencies
func (c *Cache) Flush() {
	c.full.Flush()
	c.explicitOnly.Flush()
	c.reverseDeps = make(map[ids.NodeID]set.Set[ids.NodeID])
}

func (c *Cache) variant(mode Mode) *cache.LRU[ids.NodeID, *Graph] {
	if mode == Full {
		return &c.full
	}
	return &c.explicitOnly
}

// addStale marks [node]'s own entries and every root depending on it
func (c *Cache) addStale(stale set.Set[ids.NodeID], node ids.NodeID) {
	stale.Add(node)
	stale.Union(c.reverseDeps[node])
}

// addStaleTopic marks every node with an edge toward [topic]: their full
// graphs resolve through the topic's membership, which just changed.
func (c *Cache) addStaleTopic(stale set.Set[ids.NodeID], state *graph.State, topic ids.TopicID) {
	for _, source := range state.TopicEdgeSources(topic) {
		c.addStale(stale, source)
	}
}
