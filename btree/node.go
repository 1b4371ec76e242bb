// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package btree

import (
	"sort"
	"strings"
)

// order is the key capacity of a node. A full node splits around its key
// at half; the root level holds up to double items before it is pushed down.
const (
	order  = 6
	half   = (order + 1) / 2
	double = 2*order + 1
)

// node holds count records. nodes[i] is the subtree below keys[i]
// and last the subtree above every key; leaves have last == nil.
type node struct {
	count int
	keys  [order]string
	recs  [order]Record
	nodes [order]*node
	last  *node
}

func (node *node) key(i int) string {
	return node.keys[i]
}

func (node *node) rec(i int) *Record {
	return &node.recs[i]
}

func (node *node) node(i int) *node {
	if i == node.count {
		return node.last
	}
	return node.nodes[i]
}

func (node *node) find(key string) (int, bool) {
	return sort.Find(node.count, func(i int) int {
		return strings.Compare(key, node.keys[i])
	})
}

func (node *node) insert(i int, entry *entry) {
	if i != node.count {
		l := i + 1
		copy(node.keys[l:], node.keys[i:node.count])
		copy(node.recs[l:], node.recs[i:node.count])
		copy(node.nodes[l:], node.nodes[i:node.count])
	}
	node.count++
	node.keys[i] = entry.key
	node.recs[i] = entry.rec
	node.nodes[i] = entry.node
}

// items yields records in key order, subtrees interleaved.
func (node *node) items(yield func(key string, rec Record) bool) bool {
	if node.last == nil {
		for i := 0; i < node.count; i++ {
			if !yield(node.keys[i], node.recs[i]) {
				return false
			}
		}
		return true
	}
	for i := 0; i < node.count; i++ {
		if !node.nodes[i].items(yield) {
			return false
		}
		if !yield(node.keys[i], node.recs[i]) {
			return false
		}
	}
	return node.last.items(yield)
}
