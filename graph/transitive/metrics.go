// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transitive

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/atlasgo/utils/wrappers"
)

type metrics struct {
	hits, misses, invalidated, evicted prometheus.Counter
}

func (m *metrics) Initialize(namespace string, registerer prometheus.Registerer) error {
	m.hits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits",
		Help:      "Number of transitive graph requests served from cache",
	})
	m.misses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses",
		Help:      "Number of transitive graph requests that required a computation",
	})
	m.invalidated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidated",
		Help:      "Number of cached transitive graphs dropped by invalidation",
	})
	m.evicted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_evicted",
		Help:      "Number of cached transitive graphs dropped by the entry cap",
	})

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.hits),
		registerer.Register(m.misses),
		registerer.Register(m.invalidated),
		registerer.Register(m.evicted),
	)
	if errs.Errored() {
		return fmt.Errorf("failed to register transitive cache metrics: %w", errs.Err)
	}
	return nil
}
