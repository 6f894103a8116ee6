// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package enginetest provides in-memory source, sink and recovery
// implementations for exercising the dispatcher.
package enginetest

import (
	"context"
	"fmt"

	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/graph"
	"github.com/ava-labs/atlasgo/graph/canonical"
)

var (
	_ engine.Source   = (*Source)(nil)
	_ engine.Sink     = (*Sink)(nil)
	_ engine.Recovery = (*Recovery)(nil)
)

// Source replays a fixed list of serialized events with generated cursors
type Source struct {
	// Skippable is returned by AllowsSkip
	Skippable bool

	Events [][]byte
	Acked  []engine.Cursor

	next int
}

// Push appends [ev] to the stream
func (s *Source) Push(ev graph.Event) {
	s.Events = append(s.Events, graph.MarshalEvent(ev))
}

// PushRaw appends already-serialized bytes to the stream
func (s *Source) PushRaw(b []byte) {
	s.Events = append(s.Events, b)
}

func (s *Source) Next(ctx context.Context) (engine.Cursor, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if s.next >= len(s.Events) {
		return "", nil, engine.ErrEndOfStream
	}
	cursor := engine.Cursor(fmt.Sprintf("cursor-%d", s.next))
	raw := s.Events[s.next]
	s.next++
	return cursor, raw, nil
}

func (s *Source) Ack(_ context.Context, cursor engine.Cursor) error {
	s.Acked = append(s.Acked, cursor)
	return nil
}

func (s *Source) AllowsSkip() bool { return s.Skippable }

// Sink records every emitted graph. The first [FailFirst] emits return
// [Err].
type Sink struct {
	FailFirst int
	Err       error

	Attempts int
	Emitted  []*canonical.Graph
}

func (s *Sink) Emit(_ context.Context, g *canonical.Graph) error {
	s.Attempts++
	if s.Attempts <= s.FailFirst {
		return s.Err
	}
	s.Emitted = append(s.Emitted, g)
	return nil
}

// Recovery resumes at a fixed cursor
type Recovery struct {
	ResumeAt engine.Cursor
	Reorgs   []graph.Reorg
}

func (r *Recovery) Resume(_ context.Context, reorg graph.Reorg) (engine.Cursor, error) {
	r.Reorgs = append(r.Reorgs, reorg)
	return r.ResumeAt, nil
}
