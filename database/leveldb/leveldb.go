// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/ava-labs/atlasgo/database"
)

const (
	blockCacheSize  = 12 * opt.MiB
	writeBufferSize = 12 * opt.MiB
	handleCap       = 64
)

var _ database.Database = (*Database)(nil)

// Database is a persistent key value store backed by leveldb
type Database struct {
	db *leveldb.DB
}

// New opens, and creates if needed, the leveldb instance at [path]
func New(path string) (*Database, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity:     blockCacheSize,
		WriteBuffer:            writeBufferSize,
		OpenFilesCacheCapacity: handleCap,
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	has, err := db.db.Has(key, nil)
	return has, updateError(err)
}

func (db *Database) Get(key []byte) ([]byte, error) {
	value, err := db.db.Get(key, nil)
	return value, updateError(err)
}

func (db *Database) Put(key, value []byte) error {
	return updateError(db.db.Put(key, value, nil))
}

func (db *Database) Delete(key []byte) error {
	return updateError(db.db.Delete(key, nil))
}

func (db *Database) Close() error {
	return updateError(db.db.Close())
}

// updateError casts leveldb's sentinel errors into this package's
func updateError(err error) error {
	switch err {
	case leveldb.ErrClosed:
		return database.ErrClosed
	case leveldb.ErrNotFound:
		return database.ErrNotFound
	default:
		return err
	}
}
