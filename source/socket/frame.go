// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package socket

import (
	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/utils/wrappers"
)

const maxFrameSize = 64 * 1024

// MarshalFrame builds the frame the pushing bridge sends for one event
func MarshalFrame(cursor engine.Cursor, event []byte) ([]byte, error) {
	p := wrappers.Packer{MaxSize: maxFrameSize}
	p.PackStr(string(cursor))
	p.PackBytes(event)
	return p.Bytes, p.Err
}
