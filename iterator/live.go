// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package iterator

import "bytes"

// Tombstoned is an Iterator that visits dead entries and can tell them apart.
type Tombstoned interface {
	Iterator
	// Tombstone reports whether the current entry is dead.
	Tombstone() bool
}

// Live wraps a Tombstoned iterator and skips dead entries on every move.
//
// Every positioning call resolves against the underlying iterator's current
// data, so entries tombstoned after a previous call are skipped on the next one.
type Live[I Tombstoned] struct {
	iter I
}

// Load binds the wrapper to iter.
func (live *Live[I]) Load(iter I) {
	live.iter = iter
}

// Iter returns the underlying iterator.
func (live *Live[I]) Iter() I {
	return live.iter
}

var _ Iterator = (*Live[Tombstoned])(nil)

// Valid returns true if positioned at a live entry.
func (live *Live[I]) Valid() bool {
	return live.iter.Valid() && !live.iter.Tombstone()
}

// Error returns the underlying iterator's error.
func (live *Live[I]) Error() error {
	return live.iter.Error()
}

// Key returns the current key.
func (live *Live[I]) Key() []byte {
	return live.iter.Key()
}

// Val returns the current value.
func (live *Live[I]) Val() []byte {
	return live.iter.Val()
}

// Next advances to the next live entry.
func (live *Live[I]) Next() bool {
	return live.forward(live.iter.Next())
}

// Prev moves to the previous live entry.
func (live *Live[I]) Prev() bool {
	return live.backward(live.iter.Prev())
}

// SeekFirst positions at the first live entry.
func (live *Live[I]) SeekFirst() bool {
	return live.forward(live.iter.SeekFirst())
}

// SeekLast positions at the last live entry.
func (live *Live[I]) SeekLast() bool {
	return live.backward(live.iter.SeekLast())
}

// Seek positions at the first live entry with key >= the given key.
func (live *Live[I]) Seek(key []byte) bool {
	return live.forward(live.iter.Seek(key))
}

// After positions at the first live entry with key strictly greater than key.
func (live *Live[I]) After(key []byte) bool {
	ok := live.iter.Seek(key)
	if ok && bytes.Equal(live.iter.Key(), key) {
		ok = live.iter.Next()
	}
	return live.forward(ok)
}

// Before positions at the last live entry with key strictly less than key.
func (live *Live[I]) Before(key []byte) bool {
	var ok bool
	if live.iter.Seek(key) {
		ok = live.iter.Prev()
	} else if live.iter.Error() == nil {
		// every key is below the bound
		ok = live.iter.SeekLast()
	}
	return live.backward(ok)
}

func (live *Live[I]) forward(ok bool) bool {
	for ok && live.iter.Tombstone() {
		ok = live.iter.Next()
	}
	return ok
}

func (live *Live[I]) backward(ok bool) bool {
	for ok && live.iter.Tombstone() {
		ok = live.iter.Prev()
	}
	return ok
}
