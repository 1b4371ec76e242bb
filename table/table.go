// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package table implements the ordered table store behind cursors.
//
// A Table holds records in the key order of its codec. Removing a record
// tombstones it: the key stays in the order space, invisible to every read,
// until Compact reclaims it. Navigation is resolved by key against the live
// tree on every call, so independently positioned cursors always observe each
// other's writes.
//
// Keys and values at this level are already encoded by the table's codec.
package table

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab"
	"github.com/dacapoday/sortab/btree"
	"github.com/dacapoday/sortab/codec"
	"github.com/dacapoday/sortab/iterator"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/puzpuzpuz/xsync/v3"
)

// Table is an ordered set of records with tombstones. Safe for concurrent use.
type Table struct {
	name  string
	codec *codec.Codec

	mu    sync.RWMutex
	tree  btree.BTree
	alloc allocator

	closed  atomic.Bool
	cursors *xsync.MapOf[uuid.UUID, Cursor]

	logger  *log.Logger
	set     *metrics.Set
	metrics *storeMetrics
}

// Cursor is what a table needs from an open cursor to close it.
type Cursor interface {
	Close() error
}

// Entry is one record as reported by Dump.
type Entry struct {
	Key  string
	Val  string
	Dead bool
}

// New creates an empty table named name with the given format.
func New(name string, format codec.Format, opts ...Option) (*Table, error) {
	c, err := codec.New(format)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", name)
	}
	t := &Table{
		name:    name,
		codec:   c,
		cursors: xsync.NewMapOf[uuid.UUID, Cursor](),
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.set == nil {
		t.set = metrics.NewSet()
	}
	t.metrics = newStoreMetrics(t.set, t)
	t.logger.Debug().Str("table", name).Str("format", format.String()).Msg("table created")
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Codec returns the codec resolved at creation.
func (t *Table) Codec() *codec.Codec { return t.codec }

// Logger returns the table's logger.
func (t *Table) Logger() *log.Logger { return t.logger }

// Metrics returns the set holding the table's counters.
func (t *Table) Metrics() *metrics.Set { return t.set }

// Len returns the number of live records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Live()
}

// Closed reports whether Close has been called.
func (t *Table) Closed() bool {
	return t.closed.Load()
}

// check must run under mu, so that Close cannot reset the tree between the
// check and the access.
func (t *Table) check() error {
	if t.closed.Load() {
		return sortab.Closed("table " + t.name)
	}
	return nil
}

// Display renders an encoded key for messages.
func (t *Table) Display(key string) string {
	return fmt.Sprint(t.codec.DecodeKey(key))
}

// Insert inserts or overwrites the live record at key, clearing a tombstone.
func (t *Table) Insert(key, val string) error {
	t.mu.Lock()
	if err := t.check(); err != nil {
		t.mu.Unlock()
		return err
	}
	t.tree.Set(key, val)
	if t.codec.Recno() {
		t.alloc.observe(codec.DecodeRecno(key))
	}
	t.mu.Unlock()

	t.metrics.insert.Inc()
	return nil
}

// Update overwrites the live record at key. ErrNotFound if there is none.
func (t *Table) Update(key, val string) error {
	t.mu.Lock()
	if err := t.check(); err != nil {
		t.mu.Unlock()
		return err
	}
	rec, found := t.tree.Get(key)
	if found && !rec.Dead {
		t.tree.Set(key, val)
	}
	t.mu.Unlock()

	t.metrics.update.Inc()
	if !found || rec.Dead {
		t.metrics.notFound.Inc()
		return errors.Wrapf(ErrNotFound, "update %s", t.Display(key))
	}
	return nil
}

// Remove tombstones the live record at key.
// Removing an absent or already removed key fails with ErrNotFound.
func (t *Table) Remove(key string) error {
	t.mu.Lock()
	if err := t.check(); err != nil {
		t.mu.Unlock()
		return err
	}
	ok := t.tree.Tombstone(key)
	t.mu.Unlock()

	t.metrics.remove.Inc()
	if !ok {
		t.metrics.notFound.Inc()
		return errors.Wrapf(ErrNotFound, "remove %s", t.Display(key))
	}
	return nil
}

// Lookup returns the value of the live record at key.
func (t *Table) Lookup(key string) (val string, err error) {
	t.mu.RLock()
	if err = t.check(); err != nil {
		t.mu.RUnlock()
		return
	}
	rec, found := t.tree.Get(key)
	t.mu.RUnlock()

	t.metrics.lookup.Inc()
	if !found || rec.Dead {
		t.metrics.notFound.Inc()
		err = errors.Wrapf(ErrNotFound, "lookup %s", t.Display(key))
		return
	}
	return rec.Val, nil
}

type live = iterator.Live[btree.Iter]

// First returns the smallest live record: successor of -∞.
func (t *Table) First() (key, val string, err error) {
	return t.navigate("first", (*live).SeekFirst)
}

// Last returns the largest live record: predecessor of +∞.
func (t *Table) Last() (key, val string, err error) {
	return t.navigate("last", (*live).SeekLast)
}

// Successor returns the first live record strictly after key.
// key itself need not exist or may be tombstoned.
func (t *Table) Successor(key string) (string, string, error) {
	bound := []byte(key)
	return t.navigate("next", func(l *live) bool { return l.After(bound) })
}

// Predecessor returns the last live record strictly before key.
func (t *Table) Predecessor(key string) (string, string, error) {
	bound := []byte(key)
	return t.navigate("prev", func(l *live) bool { return l.Before(bound) })
}

func (t *Table) navigate(op string, move func(*live) bool) (key, val string, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if err = t.check(); err != nil {
		return
	}

	t.metrics.navigate.Inc()
	var l live
	l.Load(t.tree.Iter())
	if !move(&l) {
		t.metrics.notFound.Inc()
		err = errors.Wrap(ErrNotFound, op)
		return
	}
	return string(l.Key()), string(l.Val()), nil
}

// Compact physically drops tombstones and returns how many were reclaimed.
// Live order and the append allocator's high-water mark are unchanged.
func (t *Table) Compact() (int, error) {
	t.mu.Lock()
	if err := t.check(); err != nil {
		t.mu.Unlock()
		return 0, err
	}
	n := t.tree.Compact()
	t.mu.Unlock()

	t.metrics.compact.Inc()
	t.logger.Info().Str("table", t.name).Int("reclaimed", n).Msg("compacted")
	return n, nil
}

// Dump returns every record in key order, tombstones included.
func (t *Table) Dump() ([]Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if err := t.check(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, t.tree.Len())
	for key, rec := range t.tree.Items {
		entries = append(entries, Entry{Key: key, Val: rec.Val, Dead: rec.Dead})
	}
	return entries, nil
}

// Close invalidates the table and closes every cursor still open on it.
func (t *Table) Close() (err error) {
	if !t.closed.CompareAndSwap(false, true) {
		return sortab.Closed("table " + t.name)
	}
	t.cursors.Range(func(id uuid.UUID, c Cursor) bool {
		err = errors.CombineErrors(err, c.Close())
		t.cursors.Delete(id)
		return true
	})

	t.mu.Lock()
	t.tree.Reset()
	t.mu.Unlock()

	t.logger.Debug().Str("table", t.name).Msg("table closed")
	return
}
