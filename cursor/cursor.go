// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package cursor implements a positioned, bidirectional cursor over a table.
//
// A cursor is either unpositioned or at a key. Every move is resolved against
// the table's live contents relative to that key, never through a cached node,
// so records inserted or removed by any cursor are seen by the next move.
//
// Exhaustion is not sticky: a Next that runs off the end leaves the cursor
// unpositioned, and the Next after that starts again from the first record.
//
// After Remove the cursor keeps the removed key as a ghost. The ghost cannot
// be read, it only anchors the following Next or Prev, which lands on the
// nearest record still alive in that direction.
//
// Usage:
//
//	c, err := cursor.Open(tbl, cursor.Append)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	for err = c.First(); err == nil; err = c.Next() {
//	    key, _ := c.Key()
//	    val, _ := c.Value()
//	    // process key, val
//	}
//	if !sortab.IsNotFound(err) {
//	    return err
//	}
//
// A Cursor must be used by one goroutine at a time.
package cursor

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab"
	"github.com/dacapoday/sortab/codec"
	"github.com/dacapoday/sortab/table"
	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// Cursor is a positioned handle on a table. It does not own the table.
type Cursor struct {
	id     uuid.UUID
	table  *table.Table
	codec  *codec.Codec
	mode   Mode
	logger *log.Logger
	closed atomic.Bool

	// position
	at    bool
	ghost bool
	key   string
	dir   Direction

	// pending input for Insert and Update
	hasKey bool
	hasVal bool
	newKey string
	newVal string
}

// Open binds a new unpositioned cursor to t.
func Open(t *table.Table, mode Mode) (*Cursor, error) {
	c := &Cursor{
		table:  t,
		codec:  t.Codec(),
		mode:   mode,
		logger: t.Logger(),
	}
	id, err := t.Register(c)
	if err != nil {
		return nil, err
	}
	c.id = id
	return c, nil
}

// ID identifies the cursor in logs.
func (c *Cursor) ID() uuid.UUID { return c.id }

// Mode returns the flags the cursor was opened with.
func (c *Cursor) Mode() Mode { return c.mode }

// Direction returns the direction of the last successful move.
func (c *Cursor) Direction() Direction { return c.dir }

// Positioned reports whether the cursor is at a readable record.
func (c *Cursor) Positioned() bool { return c.at && !c.ghost }

// First moves to the smallest live key.
func (c *Cursor) First() error {
	if err := c.check("first"); err != nil {
		return err
	}
	key, _, err := c.table.First()
	return c.moved(key, Forward, err)
}

// Last moves to the largest live key.
func (c *Cursor) Last() error {
	if err := c.check("last"); err != nil {
		return err
	}
	key, _, err := c.table.Last()
	return c.moved(key, Backward, err)
}

// Next moves to the smallest live key after the current one,
// or to the first key when unpositioned.
func (c *Cursor) Next() error {
	if err := c.check("next"); err != nil {
		return err
	}
	if !c.at {
		key, _, err := c.table.First()
		return c.moved(key, Forward, err)
	}
	key, _, err := c.table.Successor(c.key)
	return c.moved(key, Forward, err)
}

// Prev moves to the largest live key before the current one,
// or to the last key when unpositioned.
func (c *Cursor) Prev() error {
	if err := c.check("prev"); err != nil {
		return err
	}
	if !c.at {
		key, _, err := c.table.Last()
		return c.moved(key, Backward, err)
	}
	key, _, err := c.table.Predecessor(c.key)
	return c.moved(key, Backward, err)
}

// Search moves to key if a live record exists there.
// Otherwise it returns ErrNotFound and leaves the cursor unpositioned.
func (c *Cursor) Search(key any) error {
	if err := c.check("search"); err != nil {
		return err
	}
	k, err := c.codec.EncodeKey(key)
	if err != nil {
		return c.misuse("search", err)
	}
	if _, err = c.table.Lookup(k); err != nil {
		c.unposition()
		return err
	}
	c.position(k, Forward)
	return nil
}

// Key returns the current key: a string on string tables, a uint64 on
// record-number tables.
func (c *Cursor) Key() (any, error) {
	if err := c.readable("key"); err != nil {
		return nil, err
	}
	return c.codec.DecodeKey(c.key), nil
}

// Value returns the current value, read from the table on every call.
// ErrNotFound if another cursor removed the record since this one moved.
func (c *Cursor) Value() ([]byte, error) {
	if err := c.readable("value"); err != nil {
		return nil, err
	}
	val, err := c.table.Lookup(c.key)
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// SetKey sets the key used by the next Insert or Update.
// Any later move of the cursor discards it.
func (c *Cursor) SetKey(key any) error {
	if err := c.check("set key"); err != nil {
		return err
	}
	k, err := c.codec.EncodeKey(key)
	if err != nil {
		return c.misuse("set key", err)
	}
	c.newKey, c.hasKey = k, true
	return nil
}

// SetValue sets the value used by the next Insert or Update.
func (c *Cursor) SetValue(val any) error {
	if err := c.check("set value"); err != nil {
		return err
	}
	v, err := c.codec.EncodeValue(val)
	if err != nil {
		return c.misuse("set value", err)
	}
	c.newVal, c.hasVal = v, true
	return nil
}

// Insert writes the pending value under the pending key, overwriting any
// record there. In append mode on a record-number table the key may be
// omitted and is taken from the table's allocator. The cursor moves to the
// inserted key; other cursors are not repositioned.
func (c *Cursor) Insert() error {
	if err := c.check("insert"); err != nil {
		return err
	}
	if !c.hasVal {
		return c.misuse("insert", errors.Wrap(ErrInvalidArgument, "value not set"))
	}

	var key string
	switch {
	case c.hasKey:
		key = c.newKey
		if err := c.table.Insert(key, c.newVal); err != nil {
			return err
		}
	case c.mode&Append != 0 && c.codec.Recno():
		k, _, err := c.table.Append(c.newVal)
		if err != nil {
			return err
		}
		key = k
	default:
		return c.misuse("insert", errors.Wrap(ErrInvalidArgument, "key not set"))
	}

	c.clearPending()
	c.position(key, c.dir)
	return nil
}

// Update overwrites the live record at the pending key, or at the current
// position when no key is pending. ErrNotFound if there is no live record.
func (c *Cursor) Update() error {
	if err := c.check("update"); err != nil {
		return err
	}
	if !c.hasVal {
		return c.misuse("update", errors.Wrap(ErrInvalidArgument, "value not set"))
	}

	key := c.newKey
	if !c.hasKey {
		if !c.Positioned() {
			return c.misuse("update", errors.Wrap(ErrInvalidState, "no key set and cursor not positioned"))
		}
		key = c.key
	}
	if err := c.table.Update(key, c.newVal); err != nil {
		return err
	}

	c.clearPending()
	c.position(key, c.dir)
	return nil
}

// Remove tombstones the record at the current position. The cursor keeps the
// removed key as an anchor for the next Next or Prev.
// ErrNotFound when unpositioned or when the record is already gone.
func (c *Cursor) Remove() error {
	if err := c.check("remove"); err != nil {
		return err
	}
	if !c.at {
		return errors.Wrap(ErrNotFound, "remove: cursor not positioned")
	}
	if err := c.table.Remove(c.key); err != nil {
		return err
	}
	c.ghost = true
	return nil
}

// Reset unpositions the cursor and drops any pending key and value.
func (c *Cursor) Reset() error {
	if err := c.check("reset"); err != nil {
		return err
	}
	c.unposition()
	c.dir = None
	c.clearPending()
	return nil
}

// Close releases the cursor. Every later call fails with ErrInvalidState.
func (c *Cursor) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return sortab.Closed("cursor")
	}
	c.unposition()
	c.clearPending()
	c.table.Release(c.id)
	return nil
}

func (c *Cursor) check(op string) error {
	if c.closed.Load() {
		return c.misuse(op, sortab.Closed("cursor"))
	}
	return nil
}

func (c *Cursor) readable(op string) error {
	if err := c.check(op); err != nil {
		return err
	}
	switch {
	case !c.at:
		return c.misuse(op, errors.Wrap(ErrInvalidState, "cursor not positioned"))
	case c.ghost:
		return c.misuse(op, errors.Wrap(ErrInvalidState, "record at cursor was removed"))
	}
	return nil
}

// moved applies the outcome of a navigation call.
func (c *Cursor) moved(key string, dir Direction, err error) error {
	if err != nil {
		c.unposition()
		return err
	}
	c.position(key, dir)
	return nil
}

// position and unposition drop a pending key: after a move the cursor's
// own key is the target of Insert and Update.
func (c *Cursor) position(key string, dir Direction) {
	c.at, c.ghost = true, false
	c.key = key
	c.dir = dir
	c.dropKey()
}

func (c *Cursor) unposition() {
	c.at, c.ghost = false, false
	c.key = ""
	c.dropKey()
}

func (c *Cursor) dropKey() {
	c.hasKey, c.newKey = false, ""
}

func (c *Cursor) clearPending() {
	c.hasKey, c.hasVal = false, false
	c.newKey, c.newVal = "", ""
}

// misuse logs caller errors before returning them.
func (c *Cursor) misuse(op string, err error) error {
	c.logger.Warn().
		Str("table", c.table.Name()).
		Str("cursor", c.id.String()).
		Str("op", op).
		Err(err).
		Msg("cursor misuse")
	return err
}
