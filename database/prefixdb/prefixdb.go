// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prefixdb

import "github.com/ava-labs/atlasgo/database"

var _ database.Database = (*Database)(nil)

// Database partitions a database into a sub-database by prefixing all keys
// with a unique value.
type Database struct {
	prefix []byte
	db     database.Database
}

// New returns a new prefixed database
func New(prefix []byte, db database.Database) *Database {
	return &Database{
		prefix: prefix,
		db:     db,
	}
}

func (db *Database) prefixed(key []byte) []byte {
	prefixed := make([]byte, 0, len(db.prefix)+len(key))
	prefixed = append(prefixed, db.prefix...)
	return append(prefixed, key...)
}

func (db *Database) Has(key []byte) (bool, error) {
	return db.db.Has(db.prefixed(key))
}

func (db *Database) Get(key []byte) ([]byte, error) {
	return db.db.Get(db.prefixed(key))
}

func (db *Database) Put(key, value []byte) error {
	return db.db.Put(db.prefixed(key), value)
}

func (db *Database) Delete(key []byte) error {
	return db.db.Delete(db.prefixed(key))
}

// Close does not close the underlying database; the caller owns it.
func (db *Database) Close() error { return nil }
