// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package btree provides an in-memory B-tree of records with tombstones and iterator support.
package btree

import (
	"sort"
	"strings"
	"unsafe"
)

// BTree is an in-memory B-tree holding records in lexicographic key order.
// Not thread-safe.
//
// Keys are never unlinked by normal operation: Tombstone marks a record dead
// and leaves it in the order space until Compact rebuilds the tree.
// Set on a dead key revives it.
//
// Example usage:
//
//	var btree BTree
//	btree.Set("key", "value")
//	btree.Tombstone("key")
//	rec, found := btree.Get("key") // rec.Dead == true, found == true
//
//	for key, rec := range btree.Items {
//		fmt.Printf("Item: %s = %s (dead=%v)\n", key, rec.Val, rec.Dead)
//	}
type BTree struct {
	items   []item
	nodes   []*node
	last    *node
	version uint64
	size    int
	live    int
}

// Record is the stored side of a key.
type Record struct {
	Val  string
	Dead bool
}

type item = struct {
	key string
	rec Record
}

// Reset clears all data.
func (btree *BTree) Reset() {
	btree.items = nil
	btree.nodes = nil
	btree.last = nil
	btree.size = 0
	btree.live = 0
	btree.version++
}

// Set inserts or overwrites the live record at key, clearing any tombstone.
func (btree *BTree) Set(key, val string) {
	btree.version++
	rec := btree.lookup(key)
	if rec != nil {
		if rec.Dead {
			btree.live++
		}
		*rec = Record{Val: val}
		return
	}
	btree.set(key, Record{Val: val})
	btree.size++
	btree.live++
}

// Tombstone marks the live record at key dead.
// Returns false if key is absent or already dead.
func (btree *BTree) Tombstone(key string) bool {
	rec := btree.lookup(key)
	if rec == nil || rec.Dead {
		return false
	}
	btree.version++
	*rec = Record{Dead: true}
	btree.live--
	return true
}

// Get returns the record at key, dead or alive.
func (btree *BTree) Get(key string) (rec Record, found bool) {
	if r := btree.lookup(key); r != nil {
		return *r, true
	}
	return
}

// Len returns the number of records including tombstones.
func (btree *BTree) Len() int {
	return btree.size
}

// Live returns the number of records that are not tombstoned.
func (btree *BTree) Live() int {
	return btree.live
}

// Empty returns true if BTree has no records, dead or alive.
func (btree *BTree) Empty() bool {
	return len(btree.items) == 0
}

// Compact rebuilds the tree without tombstones and returns how many were dropped.
// Live records keep their relative order. Open iterators re-seek by key.
func (btree *BTree) Compact() (reclaimed int) {
	reclaimed = btree.size - btree.live
	if reclaimed == 0 {
		return
	}
	var fresh BTree
	for key, rec := range btree.Items {
		if !rec.Dead {
			fresh.set(key, rec)
		}
	}
	btree.items = fresh.items
	btree.nodes = fresh.nodes
	btree.last = fresh.last
	btree.size = btree.live
	btree.version++
	return
}

// Items implements iter.Seq2[string, Record], iterating all records in key order.
// Includes tombstones.
func (btree *BTree) Items(yield func(key string, rec Record) bool) {
	if btree.last == nil {
		for i := 0; i < len(btree.items); i++ {
			if !yield(btree.items[i].key, btree.items[i].rec) {
				return
			}
		}
		return
	}
	for i := 0; i < len(btree.items); i++ {
		if !btree.nodes[i].items(yield) {
			return
		}
		if !yield(btree.items[i].key, btree.items[i].rec) {
			return
		}
	}
	btree.last.items(yield)
}

func s2b(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func b2s(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// set inserts a key known to be absent.
func (btree *BTree) set(key string, rec Record) {
	entry := entry{key, rec, nil}
	index, found := btree.find(entry.key)
	if found {
		btree.items[index].rec = rec
		return
	}
	next := btree.node(index)
	if next == nil {
		btree.insertItem(index, &entry)
		return
	}
	if entry.set(next) {
		return
	}
	btree.insertEntry(index, &entry)
}

// lookup returns a pointer to the stored record, valid until the next insert.
func (btree *BTree) lookup(key string) *Record {
	index, found := btree.find(key)
	if found {
		return &btree.items[index].rec
	}

	node := btree.node(index)
	for node != nil {
		index, found = node.find(key)
		if found {
			return &node.recs[index]
		}
		node = node.node(index)
	}
	return nil
}

func (btree *BTree) key(i int) string {
	return btree.items[i].key
}

func (btree *BTree) rec(i int) *Record {
	return &btree.items[i].rec
}

func (btree *BTree) node(i int) *node {
	if i >= len(btree.nodes) {
		return btree.last
	}
	return btree.nodes[i]
}

func (btree *BTree) find(key string) (int, bool) {
	return sort.Find(len(btree.items), func(i int) int {
		return strings.Compare(key, btree.items[i].key)
	})
}

func (btree *BTree) insertItem(i int, entry *entry) {
	count := len(btree.items)

	if i == count {
		btree.items = append(btree.items, item{entry.key, entry.rec})
	} else {
		btree.items = append(btree.items, item{})

		l := i + 1
		copy(btree.items[l:], btree.items[i:count])

		btree.items[i] = item{entry.key, entry.rec}
	}

	if len(btree.items) == double {
		lnode := new(node)
		for i := range order {
			lnode.keys[i] = btree.items[i].key
			lnode.recs[i] = btree.items[i].rec
		}
		lnode.count = order

		rnode := new(node)
		for i := range order {
			r := i + order + 1
			rnode.keys[i] = btree.items[r].key
			rnode.recs[i] = btree.items[r].rec
		}
		rnode.count = order

		btree.items[0] = btree.items[order]
		btree.items = btree.items[:1]
		btree.nodes = []*node{lnode}
		btree.last = rnode
	}
}

func (btree *BTree) insertEntry(i int, entry *entry) {
	count := len(btree.items)

	if i == count {
		btree.items = append(btree.items, item{entry.key, entry.rec})
		btree.nodes = append(btree.nodes, entry.node)
	} else {
		btree.items = append(btree.items, item{})
		btree.nodes = append(btree.nodes, nil)

		l := i + 1
		copy(btree.items[l:], btree.items[i:count])
		copy(btree.nodes[l:], btree.nodes[i:count])

		btree.items[i] = item{entry.key, entry.rec}
		btree.nodes[i] = entry.node
	}

	if len(btree.items) == double {
		lnode := new(node)
		for i := range order {
			lnode.keys[i] = btree.items[i].key
			lnode.recs[i] = btree.items[i].rec
		}
		copy(lnode.nodes[:], btree.nodes[:order])
		lnode.count = order
		lnode.last = btree.nodes[order]

		rnode := new(node)
		for i := range order {
			r := i + order + 1
			rnode.keys[i] = btree.items[r].key
			rnode.recs[i] = btree.items[r].rec
		}
		copy(rnode.nodes[:], btree.nodes[order+1:])
		rnode.count = order
		rnode.last = btree.last

		btree.items[0] = btree.items[order]
		btree.items = btree.items[:1]
		btree.nodes[0] = lnode
		btree.nodes = btree.nodes[:1]
		btree.last = rnode
	}
}
