// Package storage persists codec encoded records on a pluggable key-value capability.
package storage

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/tanglekit/blockcodec/pkg/db"
)

// KeyValue is the persistence capability supplied by the host application.
type KeyValue interface {
	Get(key []byte) ([]byte, bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Iterable is a KeyValue which can list pairs sharing a prefix in key order.
type Iterable interface {
	KeyValue
	Exist(key []byte) (bool, error)
	Iterate(prefix []byte, limit int, reverse bool) ([]db.KeyValue, error)
	IterateKey(prefix []byte, limit int, reverse bool) ([][]byte, error)
}

// batcher is implemented by stores which apply a group of writes atomically.
type batcher interface {
	NewBatch() *db.Batch
	Write(batch *db.Batch) error
}

type writeOp struct {
	key    []byte
	value  []byte
	delete bool
}

// writeAll applies ops atomically when kv supports it, in order otherwise.
func writeAll(kv KeyValue, ops []writeOp) error {
	switch store := kv.(type) {
	case batcher:
		batch := store.NewBatch()
		for _, op := range ops {
			var err error
			if op.delete {
				err = batch.Delete(op.key)
			} else {
				err = batch.Set(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return store.Write(batch)
	case *MapStore:
		store.apply(ops)
		return nil
	}
	for _, op := range ops {
		var err error
		if op.delete {
			err = kv.Delete(op.key)
		} else {
			err = kv.Set(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Iterable = (*db.DB)(nil)
	_ Iterable = (*MapStore)(nil)
	_ batcher  = (*db.DB)(nil)
)

// MapStore is an Iterable held in memory.
type MapStore struct {
	mutex *sync.RWMutex
	data  map[string][]byte
}

func NewMapStore() *MapStore {
	return &MapStore{
		mutex: new(sync.RWMutex),
		data:  make(map[string][]byte),
	}
}

func (m *MapStore) Get(key []byte) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, exist := m.data[string(key)]
	if !exist {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

func (m *MapStore) Set(key, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *MapStore) Delete(key []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *MapStore) Exist(key []byte) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, exist := m.data[string(key)]
	return exist, nil
}

func (m *MapStore) apply(ops []writeOp) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, op := range ops {
		if op.delete {
			delete(m.data, string(op.key))
			continue
		}
		m.data[string(op.key)] = bytes.Clone(op.value)
	}
}

// Iterate returns pairs with prefix in key order. A negative limit returns every pair.
func (m *MapStore) Iterate(prefix []byte, limit int, reverse bool) ([]db.KeyValue, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	keys := m.sortedKeys(prefix, limit, reverse)
	result := make([]db.KeyValue, len(keys))
	for i, key := range keys {
		result[i] = db.NewKeyValue([]byte(key), bytes.Clone(m.data[key]))
	}
	return result, nil
}

// IterateKey returns keys with prefix in key order. A negative limit returns every key.
func (m *MapStore) IterateKey(prefix []byte, limit int, reverse bool) ([][]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	keys := m.sortedKeys(prefix, limit, reverse)
	result := make([][]byte, len(keys))
	for i, key := range keys {
		result[i] = []byte(key)
	}
	return result, nil
}

func (m *MapStore) sortedKeys(prefix []byte, limit int, reverse bool) []string {
	keys := []string{}
	for key := range m.data {
		if strings.HasPrefix(key, string(prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	}
	if limit >= 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// Len returns the number of stored pairs.
func (m *MapStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
