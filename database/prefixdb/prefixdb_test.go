// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prefixdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/atlasgo/database"
	"github.com/ava-labs/atlasgo/database/memdb"
)

func TestPrefixDB(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	a := New([]byte{0x01}, base)
	b := New([]byte{0x02}, base)

	require.NoError(a.Put([]byte("k"), []byte("va")))
	require.NoError(b.Put([]byte("k"), []byte("vb")))

	va, err := a.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("va"), va)

	vb, err := b.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("vb"), vb)

	require.NoError(a.Delete([]byte("k")))
	_, err = a.Get([]byte("k"))
	require.ErrorIs(err, database.ErrNotFound)

	// The other prefix is untouched
	vb, err = b.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("vb"), vb)
}
