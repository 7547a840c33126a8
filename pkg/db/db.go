// Package db implements the pebble backed key-value store with prefix iteration.
package db

import (
	"bytes"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

func upperBound(b []byte) []byte {
	end := bytes.Clone(b)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper-bound
}

type KeyValue interface {
	Key() []byte
	Value() []byte
}

func NewKeyValue(key, value []byte) KeyValue {
	return &keyValue{
		key:   key,
		value: value,
	}
}

type keyValue struct {
	key   []byte
	value []byte
}

func (k *keyValue) Key() []byte   { return k.key }
func (k *keyValue) Value() []byte { return k.value }

type DB struct {
	pebbleDB *pebble.DB
}

// NewDB opens or creates the database stored under path.
func NewDB(path string) (*DB, error) {
	pebbleDB, err := pebble.Open(path, &pebble.Options{
		ErrorIfExists: false,
	})
	if err != nil {
		return nil, err
	}
	return &DB{pebbleDB: pebbleDB}, nil
}

// NewInMemoryDB returns a database backed by an in-memory filesystem.
func NewInMemoryDB() (*DB, error) {
	pebbleDB, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &DB{pebbleDB: pebbleDB}, nil
}

func (db *DB) Close() error {
	return db.pebbleDB.Close()
}

// Get returns the value stored under key, or ok false if there is none.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	data, closer, err := db.pebbleDB.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	copied := bytes.Clone(data)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return copied, true, nil
}

// Exist returns true if a value is stored under key.
func (db *DB) Exist(key []byte) (bool, error) {
	_, ok, err := db.Get(key)
	return ok, err
}

func (db *DB) Set(key, value []byte) error {
	return db.pebbleDB.Set(key, value, pebble.Sync)
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(key []byte) error {
	return db.pebbleDB.Delete(key, pebble.Sync)
}

// IterateKey returns keys with prefix. A negative limit returns every key.
func (db *DB) IterateKey(prefix []byte, limit int, reverse bool) ([][]byte, error) {
	iter := db.pebbleDB.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	return iterateKeyPrefix(iter, limit, reverse)
}

// Iterate returns pairs with prefix. A negative limit returns every pair.
func (db *DB) Iterate(prefix []byte, limit int, reverse bool) ([]KeyValue, error) {
	iter := db.pebbleDB.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	return iteratePrefix(iter, limit, reverse)
}

func (db *DB) NewBatch() *Batch {
	return &Batch{
		inner: db.pebbleDB.NewBatch(),
	}
}

// Write applies every operation of batch atomically.
func (db *DB) Write(batch *Batch) error {
	return db.pebbleDB.Apply(batch.inner, pebble.Sync)
}
