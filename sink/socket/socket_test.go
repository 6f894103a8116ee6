// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package socket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	"github.com/ava-labs/atlasgo/utils/logging"
)

func TestSinkPublishes(t *testing.T) {
	require := require.New(t)

	url := "inproc://sink-test"

	sink, err := NewSink(logging.NoLog{}, url)
	require.NoError(err)
	defer func() { _ = sink.Close() }()

	subscriber, err := sub.NewSocket()
	require.NoError(err)
	defer func() { _ = subscriber.Close() }()
	require.NoError(subscriber.SetOption(mangos.OptionSubscribe, []byte{}))
	require.NoError(subscriber.SetOption(mangos.OptionRecvDeadline, 10*time.Second))
	require.NoError(subscriber.Dial(url))

	// Give the subscription time to propagate before publishing
	time.Sleep(100 * time.Millisecond)

	g := testGraph()
	require.NoError(sink.Emit(context.Background(), g))

	payload, err := subscriber.Recv()
	require.NoError(err)

	received, err := Parse(payload)
	require.NoError(err)
	require.Equal(g.Root, received.Root)
	require.True(g.Flat.Equals(received.Flat))
	require.Equal(g.Tree, received.Tree)
}
