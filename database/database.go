// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import "errors"

var (
	// ErrNotFound is returned when a key is queried that is not found in
	// the database
	ErrNotFound = errors.New("not found")
	// ErrClosed is returned when the database is operated on after Close
	ErrClosed = errors.New("closed")
)

// KeyValueReader wraps the Has and Get methods of a backing store
type KeyValueReader interface {
	// Has retrieves if a key is present in the store
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the store
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing store
type KeyValueWriter interface {
	// Put inserts the given value into the store
	Put(key []byte, value []byte) error

	// Delete removes the key from the store
	Delete(key []byte) error
}

// Database contains all the methods required to interact with a persisted
// key value store
type Database interface {
	KeyValueReader
	KeyValueWriter

	Close() error
}
