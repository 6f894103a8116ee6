// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUUnbounded(t *testing.T) {
	require := require.New(t)

	c := LRU[int, string]{}
	for i := 0; i < 100; i++ {
		c.Put(i, "v")
	}
	require.Equal(100, c.Len())
}

func TestLRUEviction(t *testing.T) {
	require := require.New(t)

	evicted := []int(nil)
	c := LRU[int, int]{
		Size:    2,
		OnEvict: func(k, _ int) { evicted = append(evicted, k) },
	}

	c.Put(1, 10)
	c.Put(2, 20)
	// Touch 1 so 2 is the least recently used
	_, ok := c.Get(1)
	require.True(ok)

	c.Put(3, 30)
	require.Equal([]int{2}, evicted)
	require.Equal(2, c.Len())

	_, ok = c.Get(2)
	require.False(ok)
	v, ok := c.Get(1)
	require.True(ok)
	require.Equal(10, v)
}

func TestLRUPutExisting(t *testing.T) {
	require := require.New(t)

	c := LRU[int, int]{Size: 2}
	c.Put(1, 10)
	c.Put(1, 11)
	require.Equal(1, c.Len())

	v, ok := c.Get(1)
	require.True(ok)
	require.Equal(11, v)
}

func TestLRUEvictFlush(t *testing.T) {
	require := require.New(t)

	hookCalls := 0
	c := LRU[int, int]{
		Size:    4,
		OnEvict: func(int, int) { hookCalls++ },
	}
	c.Put(1, 10)
	c.Put(2, 20)

	// Explicit eviction and flush bypass the hook
	c.Evict(1)
	c.Flush()
	require.Zero(hookCalls)
	require.Zero(c.Len())
}
