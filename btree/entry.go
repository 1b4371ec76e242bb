// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package btree

// entry carries a record being inserted, and after a split the separator
// promoted to the parent together with its new left sibling.
type entry struct {
	key  string
	rec  Record
	node *node
}

// set inserts e below n. Returns false when the root level must absorb a split.
func (e *entry) set(n *node) bool {
	var path []frame
	var index int
	var found bool
	var next *node
	for {
		index, found = n.find(e.key)
		if found {
			n.recs[index] = e.rec
			return true
		}
		next = n.node(index)
		if next == nil {
			break
		}
		path = append(path, frame{n, index})
		n = next
	}
	if e.insert(index, n) {
		return true
	}
	for i := len(path) - 1; i >= 0; i-- {
		if e.insert(path[i].index, path[i].node) {
			return true
		}
	}
	return false
}

// insert places e at i in n, splitting n when full.
func (e *entry) insert(i int, n *node) bool {
	if n.count < order {
		n.insert(i, e)
		return true
	}
	e.split(i, n)
	return false
}

// split moves the lower half of n plus e into a new left node and leaves
// the separator with that node in e.
func (e *entry) split(i int, n *node) {
	const total = order + 1
	var keys [total]string
	var recs [total]Record
	var nodes [total]*node
	{
		copy(keys[:i], n.keys[:i])
		copy(recs[:i], n.recs[:i])
		copy(nodes[:i], n.nodes[:i])

		keys[i] = e.key
		recs[i] = e.rec
		nodes[i] = e.node

		l := i + 1
		copy(keys[l:], n.keys[i:])
		copy(recs[l:], n.recs[i:])
		copy(nodes[l:], n.nodes[i:])
	}

	newn := new(node)
	copy(newn.keys[:], keys[:half])
	copy(newn.recs[:], recs[:half])
	copy(newn.nodes[:], nodes[:half])
	newn.count = half
	newn.last = nodes[half]

	e.key = keys[half]
	e.rec = recs[half]
	e.node = newn

	const r = half + 1
	copy(n.keys[:], keys[r:])
	copy(n.recs[:], recs[r:])
	copy(n.nodes[:], nodes[r:])
	n.count = order - half
}
