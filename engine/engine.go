// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/canonical"
	"github.com/ava-labs/atlasgo/graph/transitive"
	"github.com/ava-labs/atlasgo/graph/tree"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/logging"
	"github.com/ava-labs/atlasgo/utils/timer/mockable"
)

const (
	defaultSinkRetries    = 8
	defaultSinkRetryDelay = 100 * time.Millisecond
	defaultSinkRetryCap   = 10 * time.Second
)

var (
	// ErrEndOfStream is returned by a source whose stream finished cleanly
	ErrEndOfStream = errors.New("end of stream")
	// ErrMalformedEvent wraps a boundary rejection the source contract does
	// not allow skipping
	ErrMalformedEvent = errors.New("malformed event")
	// ErrSinkUnavailable wraps an emit that could not be acknowledged after
	// all retries
	ErrSinkUnavailable = errors.New("sink unavailable")
	// ErrInvariantViolation reports inconsistent internal state; the
	// process must halt rather than emit possibly incorrect data
	ErrInvariantViolation = errors.New("invariant violation")
)

// Cursor is the source's opaque stream position
type Cursor string

// Source is the upstream event stream. Next and Ack are the only points the
// dispatcher suspends on besides the sink.
type Source interface {
	// Next blocks for the next (cursor, serialized event) pair. It returns
	// ErrEndOfStream when the stream finished cleanly.
	Next(ctx context.Context) (Cursor, []byte, error)

	// Ack reports that every effect of the event at [cursor] is durably
	// submitted
	Ack(ctx context.Context, cursor Cursor) error

	// AllowsSkip reports whether the source contract permits acknowledging
	// a malformed event without processing it
	AllowsSkip() bool
}

// Sink consumes emitted canonical graphs. Emit returns once the graph is
// durably acknowledged.
type Sink interface {
	Emit(ctx context.Context, g *canonical.Graph) error
}

// Recovery handles reorganization signals. The dispatcher pauses until
// Resume returns the cursor to continue from.
type Recovery interface {
	Resume(ctx context.Context, reorg graph.Reorg) (Cursor, error)
}

// Config configures an engine
type Config struct {
	// RootNodeID is the designated canonical graph root. Immutable for the
	// process lifetime.
	RootNodeID ids.NodeID

	// HashSeed seeds the tree hasher. Zero selects the fixed default so
	// hashes are reproducible across processes.
	HashSeed uint64

	// CacheEntryCap bounds each transitive cache variant; zero means
	// unbounded
	CacheEntryCap int

	// AssertionsEnabled runs invariant checks after every applied event
	AssertionsEnabled bool

	// Namespace prefixes the registered metrics
	Namespace string

	// SinkRetries, SinkRetryDelay and SinkRetryCap tune the emit backoff.
	// Zero values select the defaults.
	SinkRetries    int
	SinkRetryDelay time.Duration
	SinkRetryCap   time.Duration
}

// Engine is the single-writer dispatcher. For every inbound event it runs,
// in strict order: invalidate caches against pre-state, apply the event,
// recompute the canonical graph, emit if the hash changed, acknowledge the
// cursor. One event is fully processed before the next begins.
type Engine struct {
	cfg     Config
	log     logging.Logger
	clock   mockable.Clock
	metrics metrics

	source   Source
	sink     Sink
	recovery Recovery

	// lock guards everything below. Dispatch is the only writer; Snapshot
	// may be called from an external scheduler.
	lock      sync.Mutex
	state     *graph.State
	cache     *transitive.Cache
	processor *canonical.Processor
	cursor    Cursor
}

// New returns an engine ready to Dispatch. [recovery] may be nil if the
// source never signals reorganizations.
func New(
	cfg Config,
	log logging.Logger,
	registerer prometheus.Registerer,
	source Source,
	sink Sink,
	recovery Recovery,
) (*Engine, error) {
	if cfg.SinkRetries == 0 {
		cfg.SinkRetries = defaultSinkRetries
	}
	if cfg.SinkRetryDelay == 0 {
		cfg.SinkRetryDelay = defaultSinkRetryDelay
	}
	if cfg.SinkRetryCap == 0 {
		cfg.SinkRetryCap = defaultSinkRetryCap
	}

	hasher := tree.NewHasher(cfg.HashSeed)
	cache, err := transitive.NewCache(log, hasher, cfg.CacheEntryCap, cfg.Namespace+"_transitive", registerer)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		log:       log,
		source:    source,
		sink:      sink,
		recovery:  recovery,
		state:     graph.NewState(),
		cache:     cache,
		processor: canonical.New(log, cfg.RootNodeID, hasher),
	}
	return e, e.metrics.Initialize(cfg.Namespace, registerer)
}

// Restore seeds the engine from a snapshot taken by a previous run. Must be
// called before Dispatch.
func (e *Engine) Restore(state *graph.State, lastHash uint64, hasLastHash bool, cursor Cursor) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.state = state
	e.cache.Flush()
	if hasLastHash {
		e.processor.Restore(lastHash)
	}
	e.cursor = cursor
}

// Snapshot returns the current graph state, the last committed hash and the
// last acknowledged cursor. The returned state is borrowed read-only; it
// must not be used after Dispatch resumes mutating.
func (e *Engine) Snapshot() (*graph.State, uint64, bool, Cursor) {
	e.lock.Lock()
	defer e.lock.Unlock()

	lastHash, ok := e.processor.LastHash()
	return e.state, lastHash, ok, e.cursor
}

// Dispatch consumes the source until it ends, the context is canceled, or a
// fatal condition surfaces. A cancel is only honored at a suspension point;
// an in-flight event always runs to its emit-or-skip decision first.
func (e *Engine) Dispatch(ctx context.Context) error {
	// The first computation always emits, including for an empty graph.
	// After a snapshot restore the committed hash is already seeded, so an
	// unchanged resume stays silent.
	if err := e.recompute(ctx); err != nil {
		return err
	}

	for {
		cursor, raw, err := e.source.Next(ctx)
		switch {
		case errors.Is(err, ErrEndOfStream):
			return nil
		case err != nil:
			return err
		}

		ev, err := graph.ParseEvent(raw)
		if err != nil {
			e.metrics.malformed.Inc()
			if !e.source.AllowsSkip() {
				return fmt.Errorf("%w: %s", ErrMalformedEvent, err)
			}
			e.log.Warn("skipping malformed event at cursor %q: %s", cursor, err)
			if err := e.source.Ack(ctx, cursor); err != nil {
				return err
			}
			e.setCursor(cursor)
			continue
		}

		if reorg, ok := ev.(graph.Reorg); ok {
			if e.recovery == nil {
				return fmt.Errorf("received reorg signal at cursor %q with no recovery collaborator", cursor)
			}
			e.log.Warn("reorg signalled, pausing until recovery resumes")
			resumeAt, err := e.recovery.Resume(ctx, reorg)
			if err != nil {
				return err
			}
			e.log.Info("resuming at cursor %q", resumeAt)
			e.setCursor(resumeAt)
			continue
		}

		if err := e.process(ctx, ev); err != nil {
			return err
		}
		if err := e.source.Ack(ctx, cursor); err != nil {
			return err
		}
		e.setCursor(cursor)
	}
}

// process runs the four pipeline stages for one event
func (e *Engine) process(ctx context.Context, ev graph.Event) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	startTime := e.clock.Time()

	// Invalidation must see the pre-state: the reverse dependencies that
	// are about to become stale are resolved against the topology the
	// event has not yet rewritten.
	e.cache.Invalidate(ev, e.state)
	e.state.Apply(ev)

	if e.cfg.AssertionsEnabled {
		if err := e.state.CheckInvariants(); err != nil {
			e.log.Fatal("halting: %s", err)
			return fmt.Errorf("%w: %s", ErrInvariantViolation, err)
		}
	}

	if err := e.recomputeLocked(ctx); err != nil {
		return err
	}

	e.metrics.processed.Inc()
	e.metrics.processDuration.Observe(float64(e.clock.Time().Sub(startTime).Milliseconds()))
	return nil
}

func (e *Engine) recompute(ctx context.Context) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.recomputeLocked(ctx)
}

func (e *Engine) recomputeLocked(ctx context.Context) error {
	g, h, changed := e.processor.Recompute(e.state, e.cache)
	if !changed {
		e.metrics.unchanged.Inc()
		return nil
	}
	if err := e.emit(ctx, g); err != nil {
		return err
	}
	// Only an acknowledged emit advances the committed hash
	e.processor.Commit(h)
	e.metrics.emitted.Inc()
	e.log.Debug("emitted canonical graph with %d nodes, hash %#x", g.Flat.Len(), h)
	return nil
}

// emit submits [g] to the sink, retrying with capped exponential backoff
func (e *Engine) emit(ctx context.Context, g *canonical.Graph) error {
	delay := e.cfg.SinkRetryDelay
	var lastErr error
	for attempt := 0; attempt < e.cfg.SinkRetries; attempt++ {
		if attempt > 0 {
			e.metrics.sinkRetries.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if delay *= 2; delay > e.cfg.SinkRetryCap {
				delay = e.cfg.SinkRetryCap
			}
		}
		if lastErr = e.sink.Emit(ctx, g); lastErr == nil {
			return nil
		}
		e.log.Warn("emit attempt %d failed: %s", attempt+1, lastErr)
	}
	return fmt.Errorf("%w: %s", ErrSinkUnavailable, lastErr)
}

func (e *Engine) setCursor(cursor Cursor) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.cursor = cursor
}
