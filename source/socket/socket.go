// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package socket consumes the topology stream from a nanomsg pull socket.
// The upstream substream bridge pushes one frame per event: a cursor string
// followed by the serialized event.
package socket

import (
	"context"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"

	// register the transports the dial URL may name
	_ "go.nanomsg.org/mangos/v3/transport/inproc"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"

	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/utils/logging"
	"github.com/ava-labs/atlasgo/utils/wrappers"
)

// recvPoll bounds how long a blocking receive can delay a cancel
const recvPoll = 250 * time.Millisecond

var _ engine.Source = (*Source)(nil)

// Source is a pull-socket backed event stream. The pushing side owns
// durability; acknowledgments are local no-ops.
type Source struct {
	log  logging.Logger
	sock mangos.Socket
}

// New dials [url] and returns a source reading from there
func New(log logging.Logger, url string) (*Source, error) {
	sock, err := pull.NewSocket()
	if err != nil {
		return nil, err
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, recvPoll); err != nil {
		_ = sock.Close()
		return nil, err
	}
	if err := sock.Dial(url); err != nil {
		_ = sock.Close()
		return nil, err
	}
	log.Info("consuming topology events from %s", url)
	return &Source{
		log:  log,
		sock: sock,
	}, nil
}

// Next blocks for the next pushed frame and splits it into cursor and event
// bytes
func (s *Source) Next(ctx context.Context) (engine.Cursor, []byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		frame, err := s.sock.Recv()
		if err == mangos.ErrRecvTimeout {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("couldn't receive event frame: %w", err)
		}

		p := wrappers.Packer{Bytes: frame}
		cursor := p.UnpackStr()
		event := p.UnpackBytes()
		if p.Errored() {
			return "", nil, fmt.Errorf("couldn't parse event frame: %w", p.Err)
		}
		return engine.Cursor(cursor), event, nil
	}
}

// Ack is a no-op: a push stream has no cursor channel back to the bridge
func (s *Source) Ack(context.Context, engine.Cursor) error { return nil }

// AllowsSkip reports that malformed events may be skipped; the bridge logs
// and re-pushes nothing
func (s *Source) AllowsSkip() bool { return true }

// Close releases the socket
func (s *Source) Close() error {
	return s.sock.Close()
}
