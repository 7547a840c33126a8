package db

import (
	"bytes"

	"github.com/cockroachdb/pebble"
)

func withinLimit(count, limit int) bool {
	return limit < 0 || count < limit
}

func iteratePrefix(iter *pebble.Iterator, limit int, reverse bool) ([]KeyValue, error) {
	var data []KeyValue
	step := iter.Next
	valid := iter.First()
	if reverse {
		step = iter.Prev
		valid = iter.Last()
	}
	for ; valid && withinLimit(len(data), limit); valid = step() {
		data = append(data, &keyValue{key: bytes.Clone(iter.Key()), value: bytes.Clone(iter.Value())})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return data, nil
}

func iterateKeyPrefix(iter *pebble.Iterator, limit int, reverse bool) ([][]byte, error) {
	var data [][]byte
	step := iter.Next
	valid := iter.First()
	if reverse {
		step = iter.Prev
		valid = iter.Last()
	}
	for ; valid && withinLimit(len(data), limit); valid = step() {
		data = append(data, bytes.Clone(iter.Key()))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return data, nil
}
