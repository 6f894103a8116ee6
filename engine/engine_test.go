// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/atlasgo/database/memdb"
	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/engine/enginetest"
	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/snapshot"
	"github.com/ava-labs/atlasgo/utils/logging"
	"github.com/ava-labs/atlasgo/utils/set"
)

func topicPtr(t ids.TopicID) *ids.TopicID { return &t }

func newTestEngine(t *testing.T, root ids.NodeID, source *enginetest.Source, sink *enginetest.Sink) *engine.Engine {
	e, err := engine.New(
		engine.Config{
			RootNodeID:        root,
			AssertionsEnabled: true,
			Namespace:         "test",
			SinkRetryDelay:    time.Microsecond,
		},
		logging.NoLog{},
		prometheus.NewRegistry(),
		source,
		sink,
		nil,
	)
	require.NoError(t, err)
	return e
}

// An empty stream still emits the singleton canonical graph exactly once
func TestDispatchEmptyGraph(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	source := &enginetest.Source{}
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	require.NoError(e.Dispatch(context.Background()))
	require.Len(sink.Emitted, 1)

	g := sink.Emitted[0]
	require.Equal(n1, g.Root)
	require.True(g.Flat.Equals(set.Of(n1)))
	require.Equal(graph.KindRoot, g.Tree.Kind)
	require.Empty(g.Tree.Children)
}

// A linear chain emits on the bootstrap and after each edge
func TestDispatchLinearChain(t *testing.T) {
	require := require.New(t)

	n1, n2, n3 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2), ids.BuildTestNodeID(3)
	source := &enginetest.Source{}
	source.Push(graph.NodeCreated{Node: n1})
	source.Push(graph.NodeCreated{Node: n2})
	source.Push(graph.NodeCreated{Node: n3})
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	source.Push(graph.ExplicitEdgeAdded{Source: n2, Target: n3, Kind: graph.KindRelated})
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	require.NoError(e.Dispatch(context.Background()))
	require.Len(sink.Emitted, 3)

	final := sink.Emitted[2]
	require.True(final.Flat.Equals(set.Of(n1, n2, n3)))
	require.Len(final.Tree.Children, 1)
	require.Equal(n2, final.Tree.Children[0].ID)
	require.Len(final.Tree.Children[0].Children, 1)
	require.Equal(n3, final.Tree.Children[0].Children[0].ID)

	// Every event was acknowledged in order
	require.Len(source.Acked, 5)
}

// A cycle in the input is broken deterministically
func TestDispatchCycle(t *testing.T) {
	require := require.New(t)

	n1, n2, n3 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2), ids.BuildTestNodeID(3)
	run := func() *engine.Engine {
		source := &enginetest.Source{}
		source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
		source.Push(graph.ExplicitEdgeAdded{Source: n2, Target: n3, Kind: graph.KindVerified})
		source.Push(graph.ExplicitEdgeAdded{Source: n3, Target: n1, Kind: graph.KindVerified})
		sink := &enginetest.Sink{}
		e := newTestEngine(t, n1, source, sink)
		require.NoError(e.Dispatch(context.Background()))

		final := sink.Emitted[len(sink.Emitted)-1]
		require.True(final.Flat.Equals(set.Of(n1, n2, n3)))
		require.Equal([]ids.NodeID{n1, n2, n3}, final.Tree.Flatten())
		return e
	}

	_, hashA, okA, _ := snapshotOf(run())
	_, hashB, okB, _ := snapshotOf(run())
	require.True(okA)
	require.True(okB)
	require.Equal(hashA, hashB)
}

func snapshotOf(e *engine.Engine) (*graph.State, uint64, bool, engine.Cursor) {
	return e.Snapshot()
}

// Removing a deep edge invalidates the affected roots and drops the node
func TestDispatchInvalidationCascade(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	n2 := ids.BuildTestNodeID(2)
	n3 := ids.BuildTestNodeID(3)
	n4 := ids.BuildTestNodeID(4)
	n5 := ids.BuildTestNodeID(5)
	t1 := ids.BuildTestTopicID(1)

	source := &enginetest.Source{}
	source.Push(graph.NodeCreated{Node: n1})
	source.Push(graph.NodeCreated{Node: n2})
	source.Push(graph.NodeCreated{Node: n3, Topic: topicPtr(t1)})
	source.Push(graph.NodeCreated{Node: n4})
	source.Push(graph.NodeCreated{Node: n5})
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n3, Kind: graph.KindVerified})
	source.Push(graph.ExplicitEdgeAdded{Source: n3, Target: n4, Kind: graph.KindVerified})
	source.Push(graph.ExplicitEdgeAdded{Source: n4, Target: n5, Kind: graph.KindVerified})
	source.Push(graph.TopicEdgeAdded{Source: n2, Topic: t1})
	source.Push(graph.ExplicitEdgeRemoved{Source: n4, Target: n5})
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	require.NoError(e.Dispatch(context.Background()))

	final := sink.Emitted[len(sink.Emitted)-1]
	require.True(final.Flat.Equals(set.Of(n1, n2, n3, n4)))

	// The one before still carried n5, so the removal emitted
	previous := sink.Emitted[len(sink.Emitted)-2]
	require.True(previous.Flat.Contains(n5))
}

// No-op events produce no emit
func TestDispatchNoOpEventsSilent(t *testing.T) {
	require := require.New(t)

	n1, n2 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2)
	source := &enginetest.Source{}
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	source.Push(graph.NodeCreated{Node: n2})
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	require.NoError(e.Dispatch(context.Background()))

	// Bootstrap plus the first edge; the duplicates stay silent
	require.Len(sink.Emitted, 2)
	require.Len(source.Acked, 3)
}

// A failing sink is retried; state only advances after acknowledgment
func TestDispatchSinkRetry(t *testing.T) {
	require := require.New(t)

	n1, n2 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2)
	source := &enginetest.Source{}
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	sink := &enginetest.Sink{
		FailFirst: 3,
		Err:       errors.New("broker away"),
	}
	e := newTestEngine(t, n1, source, sink)

	require.NoError(e.Dispatch(context.Background()))
	require.Equal(3+2, sink.Attempts)
	require.Len(sink.Emitted, 2)
}

// A sink that never recovers halts the dispatcher without dropping events
func TestDispatchSinkUnavailable(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	source := &enginetest.Source{}
	sink := &enginetest.Sink{
		FailFirst: 1000,
		Err:       errors.New("broker gone"),
	}
	e := newTestEngine(t, n1, source, sink)

	err := e.Dispatch(context.Background())
	require.ErrorIs(err, engine.ErrSinkUnavailable)

	// The failed bootstrap emit never committed a hash
	_, _, ok, _ := e.Snapshot()
	require.False(ok)
	require.Empty(source.Acked)
}

// Malformed events are skipped and acked when the source allows it
func TestDispatchMalformedSkippable(t *testing.T) {
	require := require.New(t)

	n1, n2 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2)
	source := &enginetest.Source{Skippable: true}
	source.PushRaw([]byte{0xff, 0xee})
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	require.NoError(e.Dispatch(context.Background()))
	require.Len(source.Acked, 2)
	require.Len(sink.Emitted, 2)
}

// Malformed events are fatal when the source contract disallows skipping
func TestDispatchMalformedFatal(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	source := &enginetest.Source{}
	source.PushRaw([]byte{0xff, 0xee})
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	err := e.Dispatch(context.Background())
	require.ErrorIs(err, engine.ErrMalformedEvent)
	require.Empty(source.Acked)
}

// Reorg signals delegate to the recovery collaborator and continue at its
// cursor
func TestDispatchReorg(t *testing.T) {
	require := require.New(t)

	n1, n2 := ids.BuildTestNodeID(1), ids.BuildTestNodeID(2)
	source := &enginetest.Source{}
	source.Push(graph.Reorg{LastValidCursor: "cursor-before"})
	source.Push(graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified})
	sink := &enginetest.Sink{}
	recovery := &enginetest.Recovery{ResumeAt: "cursor-before"}

	e, err := engine.New(
		engine.Config{RootNodeID: n1, Namespace: "test"},
		logging.NoLog{},
		prometheus.NewRegistry(),
		source,
		sink,
		recovery,
	)
	require.NoError(err)

	require.NoError(e.Dispatch(context.Background()))
	require.Len(recovery.Reorgs, 1)
	require.Equal("cursor-before", recovery.Reorgs[0].LastValidCursor)
	require.Len(sink.Emitted, 2)
}

// Saving after a prefix and resuming with the suffix matches one full run
func TestSnapshotRoundTrip(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	n2 := ids.BuildTestNodeID(2)
	n3 := ids.BuildTestNodeID(3)
	t1 := ids.BuildTestTopicID(1)

	prefix := []graph.Event{
		graph.NodeCreated{Node: n2, Topic: topicPtr(t1)},
		graph.ExplicitEdgeAdded{Source: n1, Target: n2, Kind: graph.KindVerified},
		graph.TopicEdgeAdded{Source: n2, Topic: t1},
	}
	suffix := []graph.Event{
		graph.ExplicitEdgeAdded{Source: n2, Target: n3, Kind: graph.KindRelated},
		graph.TopicMembershipAdded{Node: n3, Topic: t1},
	}

	// One full run
	fullSource := &enginetest.Source{}
	for _, ev := range append(append([]graph.Event{}, prefix...), suffix...) {
		fullSource.Push(ev)
	}
	full := newTestEngine(t, n1, fullSource, &enginetest.Sink{})
	require.NoError(full.Dispatch(context.Background()))
	fullState, fullHash, ok, _ := full.Snapshot()
	require.True(ok)

	// Prefix run, snapshot, resume with the suffix
	prefixSource := &enginetest.Source{}
	for _, ev := range prefix {
		prefixSource.Push(ev)
	}
	first := newTestEngine(t, n1, prefixSource, &enginetest.Sink{})
	require.NoError(first.Dispatch(context.Background()))

	store := snapshot.New(memdb.New())
	state, hash, hasHash, cursor := first.Snapshot()
	require.NoError(store.Save(state, hash, hasHash, cursor))

	loaded, loadedHash, loadedHasHash, loadedCursor, found, err := store.Load()
	require.NoError(err)
	require.True(found)

	suffixSource := &enginetest.Source{}
	for _, ev := range suffix {
		suffixSource.Push(ev)
	}
	resumedSink := &enginetest.Sink{}
	resumed := newTestEngine(t, n1, suffixSource, resumedSink)
	resumed.Restore(loaded, loadedHash, loadedHasHash, loadedCursor)
	require.NoError(resumed.Dispatch(context.Background()))

	// The resume must not re-emit the restored graph
	require.Len(resumedSink.Emitted, 2)

	resumedState, resumedHash, ok, _ := resumed.Snapshot()
	require.True(ok)
	require.Equal(fullHash, resumedHash)
	require.True(fullState.Equal(resumedState))
}

// Cancellation is only honored at a suspension point
func TestDispatchCancel(t *testing.T) {
	require := require.New(t)

	n1 := ids.BuildTestNodeID(1)
	source := &enginetest.Source{}
	sink := &enginetest.Sink{}
	e := newTestEngine(t, n1, source, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Dispatch(ctx)
	require.ErrorIs(err, context.Canceled)
}
