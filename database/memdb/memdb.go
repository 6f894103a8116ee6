// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memdb

import (
	"sync"

	"github.com/ava-labs/atlasgo/database"
)

var _ database.Database = (*Database)(nil)

// Database is an ephemeral key value store backed by a map
type Database struct {
	lock sync.RWMutex
	db   map[string][]byte
}

// New returns a map backed database
func New() *Database {
	return &Database{db: make(map[string][]byte)}
}

func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.db == nil {
		return false, database.ErrClosed
	}
	_, ok := db.db[string(key)]
	return ok, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.db == nil {
		return nil, database.ErrClosed
	}
	if value, ok := db.db[string(key)]; ok {
		ret := make([]byte, len(value))
		copy(ret, value)
		return ret, nil
	}
	return nil, database.ErrNotFound
}

func (db *Database) Put(key, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.db == nil {
		return database.ErrClosed
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	db.db[string(key)] = stored
	return nil
}

func (db *Database) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.db == nil {
		return database.ErrClosed
	}
	delete(db.db, string(key))
	return nil
}

func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.db == nil {
		return database.ErrClosed
	}
	db.db = nil
	return nil
}
