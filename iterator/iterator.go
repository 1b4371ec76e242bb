// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package iterator defines the iteration contract shared by the ordered index
// and the table store, and a wrapper that hides tombstoned entries.
package iterator

// Iterator walks a sorted key-value set in both directions.
//
//	for ok := iter.SeekFirst(); ok; ok = iter.Next() {
//	    key, val := iter.Key(), iter.Val()
//	}
//
// Every move returns whether the iterator landed on an entry; running off
// either end leaves it unpositioned.
type Iterator interface {
	// Valid reports whether the iterator is at an entry.
	Valid() bool

	// Error reports a failure behind a false move. In-memory sources return nil.
	Error() error

	// Key and Val may alias the source; they are valid until the next call.
	// Val is nil on a tombstone.
	Key() []byte
	Val() []byte

	Next() bool
	Prev() bool
	SeekFirst() bool
	SeekLast() bool

	// Seek moves to the smallest key >= key.
	Seek(key []byte) bool
}
