// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import "container/list"

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a key value store with bounded size. If the size is attempted to be
// exceeded, then the least recently used element is evicted.
//
// A Size of 0 means the cache is unbounded.
//
// LRU is not safe for concurrent use.
type LRU[K comparable, V any] struct {
	// Size is the maximum number of elements this cache holds. Immutable
	// after first use.
	Size int

	// OnEvict, if non-nil, is invoked with each entry dropped because the
	// cache exceeded Size. It is not invoked for Evict or Flush.
	OnEvict func(K, V)

	elements map[K]*list.Element
	order    *list.List
}

func (c *LRU[K, V]) init() {
	if c.elements == nil {
		c.elements = make(map[K]*list.Element)
		c.order = list.New()
	}
}

// Put inserts [value] under [key], evicting the least recently used entry if
// the cache is full
func (c *LRU[K, V]) Put(key K, value V) {
	c.init()
	if e, ok := c.elements[key]; ok {
		e.Value = entry[K, V]{key: key, value: value}
		c.order.MoveToFront(e)
		return
	}
	c.elements[key] = c.order.PushFront(entry[K, V]{key: key, value: value})
	if c.Size <= 0 || c.order.Len() <= c.Size {
		return
	}
	oldest := c.order.Back()
	c.order.Remove(oldest)
	dropped := oldest.Value.(entry[K, V])
	delete(c.elements, dropped.key)
	if c.OnEvict != nil {
		c.OnEvict(dropped.key, dropped.value)
	}
}

// Get returns the value under [key], marking it most recently used
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.init()
	e, ok := c.elements[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(e)
	return e.Value.(entry[K, V]).value, true
}

// Evict removes [key] from the cache, if present
func (c *LRU[K, V]) Evict(key K) {
	c.init()
	if e, ok := c.elements[key]; ok {
		c.order.Remove(e)
		delete(c.elements, key)
	}
}

// Flush removes every entry from the cache
func (c *LRU[K, V]) Flush() {
	c.elements = nil
	c.order = nil
}

// Len returns the number of cached entries
func (c *LRU[K, V]) Len() int {
	c.init()
	return c.order.Len()
}

// Keys returns the cached keys in an unspecified order
func (c *LRU[K, V]) Keys() []K {
	c.init()
	keys := make([]K, 0, len(c.elements))
	for key := range c.elements {
		keys = append(keys, key)
	}
	return keys
}
