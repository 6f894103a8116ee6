// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/atlasgo/utils/wrappers"
)

type metrics struct {
	processed, emitted, unchanged, malformed, sinkRetries prometheus.Counter

	processDuration prometheus.Histogram
}

func (m *metrics) Initialize(namespace string, registerer prometheus.Registerer) error {
	m.processed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed",
		Help:      "Number of events fully processed",
	})
	m.emitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graphs_emitted",
		Help:      "Number of canonical graphs emitted to the sink",
	})
	m.unchanged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recomputes_unchanged",
		Help:      "Number of recomputations whose hash matched the last emit",
	})
	m.malformed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_malformed",
		Help:      "Number of events rejected at the boundary",
	})
	m.sinkRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sink_retries",
		Help:      "Number of emit attempts that had to be retried",
	})
	m.processDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "process_duration_ms",
		Help:      "Milliseconds spent processing a single event",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	})

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.processed),
		registerer.Register(m.emitted),
		registerer.Register(m.unchanged),
		registerer.Register(m.malformed),
		registerer.Register(m.sinkRetries),
		registerer.Register(m.processDuration),
	)
	if errs.Errored() {
		return fmt.Errorf("failed to register engine metrics: %w", errs.Err)
	}
	return nil
}
