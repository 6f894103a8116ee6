// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package socket publishes canonical graphs on a nanomsg pub socket.
// Subscribers (brokers, indexers) attach with a sub socket and receive
// emitted graphs in emit order; the pub socket drops messages for
// subscribers that fall behind.
package socket

import (
	"context"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// register the transports the publish URL may name
	_ "go.nanomsg.org/mangos/v3/transport/inproc"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"

	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/graph/canonical"
	"github.com/ava-labs/atlasgo/utils/logging"
)

var _ engine.Sink = (*Sink)(nil)

// Sink is a pub-socket backed emitter
type Sink struct {
	log  logging.Logger
	sock mangos.Socket
}

// NewSink listens on [url] and returns a sink publishing there
func NewSink(log logging.Logger, url string) (*Sink, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, err
	}
	if err := sock.Listen(url); err != nil {
		_ = sock.Close()
		return nil, err
	}
	log.Info("publishing canonical graphs on %s", url)
	return &Sink{
		log:  log,
		sock: sock,
	}, nil
}

// Emit publishes [g]. A send that the socket accepted is considered
// acknowledged; pub sockets drop for slow subscribers by design, so durable
// delivery belongs to the broker bridging this socket.
func (s *Sink) Emit(ctx context.Context, g *canonical.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := Marshal(g)
	if err != nil {
		return err
	}
	return s.sock.Send(payload)
}

// Close releases the socket
func (s *Sink) Close() error {
	return s.sock.Close()
}
