// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package btree

// Iter returns an unpositioned iterator over live and dead records.
// It follows later mutations of the tree by re-seeking its key.
func (btree *BTree) Iter() Iter {
	return &iter{
		root:    btree,
		version: btree.version,
		index:   len(btree.items),
	}
}

// Iter walks a BTree in key order.
type Iter = *iter

type iter struct {
	root    *BTree
	path    []frame // descent below the root level, deepest last
	key     string  // current key, re-sought when version is stale
	version uint64
	index   int // position in root.items; len(items) when unpositioned
}

type frame = struct {
	node  *node
	index int
}

// sync re-seeks key after a mutation. A key dropped by Compact
// resolves to its successor.
func (it Iter) sync() bool {
	if len(it.root.items) == 0 {
		it.reset()
		return false
	}

	return it.seek(it.key)
}

func (it Iter) reset() {
	it.version = it.root.version
	it.path = it.path[:0]
	it.index = 0
	it.key = ""
}

// Valid reports whether the iterator is at a record, dead or alive.
func (it Iter) Valid() bool {
	if it.version != it.root.version {
		return it.sync()
	}

	if len(it.path) == 0 {
		return it.index < len(it.root.items)
	}

	return true
}

// Error is always nil.
func (it Iter) Error() error {
	return nil
}

// Key returns the current key. It aliases tree memory; copy to keep it.
func (it Iter) Key() []byte {
	return s2b(it.key)
}

// Val returns the current value, nil on a tombstone.
func (it Iter) Val() []byte {
	rec := it.rec()
	if rec == nil || rec.Dead {
		return nil
	}
	return s2b(rec.Val)
}

// Tombstone reports whether the current record is dead.
func (it Iter) Tombstone() bool {
	rec := it.rec()
	return rec != nil && rec.Dead
}

func (it Iter) rec() *Record {
	if it.version != it.root.version {
		if !it.sync() {
			return nil
		}
	}

	if len(it.path) == 0 {
		if it.index >= len(it.root.items) {
			return nil
		}
		return it.root.rec(it.index)
	}

	top := &it.path[len(it.path)-1]
	return top.node.rec(top.index)
}

// Next moves to the following record.
func (it Iter) Next() bool {
	if it.version != it.root.version {
		if !it.sync() {
			return false
		}
	}

	var node, next *node
	if len(it.path) == 0 {
		if it.index >= len(it.root.items) {
			return false
		}

		it.index++
		node = it.root.node(it.index)
		if node == nil {
			if it.index < len(it.root.items) {
				it.key = it.root.key(it.index)
				return true
			}
			it.key = ""
			return false
		}
	} else {
		l := len(it.path) - 1
		c := &it.path[l]
		c.index++
		node = c.node.node(c.index)
		if node == nil {
			if c.index < c.node.count {
				it.key = c.node.key(c.index)
				return true
			}
			for l--; l >= 0; l-- {
				c = &it.path[l]
				if c.index < c.node.count {
					it.path = it.path[:l+1]
					it.key = c.node.key(c.index)
					return true
				}
			}
			it.path = it.path[:0]
			if it.index < len(it.root.items) {
				it.key = it.root.key(it.index)
				return true
			}
			it.key = ""
			return false
		}
	}
	for {
		it.path = append(it.path, frame{node, 0})
		next = node.node(0)
		if next == nil {
			it.key = node.key(0)
			return true
		}
		node = next
	}
}

// Prev moves to the preceding record.
func (it Iter) Prev() bool {
	if it.version != it.root.version {
		if !it.sync() {
			return false
		}
	}

	var node *node
	if len(it.path) == 0 {
		if it.index >= len(it.root.items) {
			return false
		}

		node = it.root.node(it.index)
		if node == nil {
			if it.index > 0 {
				it.index--
				it.key = it.root.key(it.index)
				return true
			}
			it.index = len(it.root.items)
			it.key = ""
			return false
		}
	} else {
		l := len(it.path) - 1
		c := &it.path[l]
		node = c.node.node(c.index)
		if node == nil {
			if c.index > 0 {
				c.index--
				it.key = c.node.key(c.index)
				return true
			}
			for l--; l >= 0; l-- {
				c = &it.path[l]
				if c.index > 0 {
					c.index--
					it.path = it.path[:l+1]
					it.key = c.node.key(c.index)
					return true
				}
			}
			it.path = it.path[:0]
			if it.index > 0 {
				it.index--
				it.key = it.root.key(it.index)
				return true
			}
			it.index = len(it.root.items)
			it.key = ""
			return false
		}
	}
	for node.last != nil {
		it.path = append(it.path, frame{node, node.count})
		node = node.last
	}
	index := node.count - 1
	it.path = append(it.path, frame{node, index})
	it.key = node.key(index)
	return true
}

// SeekFirst moves to the smallest key.
func (it Iter) SeekFirst() bool {
	if len(it.root.items) == 0 {
		it.reset()
		return false
	}

	it.version = it.root.version
	it.path = it.path[:0]

	it.index = 0
	node := it.root.node(0)
	if node == nil {
		it.key = it.root.key(0)
		return true
	}

	for {
		it.path = append(it.path, frame{node, 0})
		next := node.node(0)
		if next == nil {
			it.key = node.key(0)
			return true
		}
		node = next
	}
}

// SeekLast moves to the largest key.
func (it Iter) SeekLast() bool {
	if len(it.root.items) == 0 {
		it.reset()
		return false
	}

	it.version = it.root.version
	it.path = it.path[:0]

	node := it.root.last
	if node == nil {
		it.index = len(it.root.items) - 1
		it.key = it.root.key(it.index)
		return true
	}
	it.index = len(it.root.items)

	for node.last != nil {
		it.path = append(it.path, frame{node, node.count})
		node = node.last
	}

	index := node.count - 1
	it.path = append(it.path, frame{node, index})
	it.key = node.key(index)
	return true
}

// Seek moves to the smallest key >= key.
func (it Iter) Seek(key []byte) bool {
	if len(it.root.items) == 0 {
		it.reset()
		return false
	}

	return it.seek(b2s(key))
}

func (it Iter) seek(key string) bool {
	it.version = it.root.version
	it.path = it.path[:0]

	index, found := it.root.find(key)
	it.index = index
	if found {
		it.key = it.root.key(index)
		return true
	}
	node := it.root.node(index)
	if node == nil {
		if index < len(it.root.items) {
			it.key = it.root.key(index)
			return true
		}
		it.key = ""
		return false
	}

	for {
		index, found = node.find(key)
		it.path = append(it.path, frame{node, index})
		if found {
			it.key = node.key(index)
			return true
		}
		next := node.node(index)
		if next != nil {
			node = next
			continue
		}
		if index < node.count {
			it.key = node.key(index)
			return true
		}
		for l := len(it.path) - 1; l >= 0; l-- {
			c := &it.path[l]
			if c.index < c.node.count {
				it.path = it.path[:l+1]
				it.key = c.node.key(c.index)
				return true
			}
		}
		it.path = it.path[:0]
		if it.index < len(it.root.items) {
			it.key = it.root.key(it.index)
			return true
		}
		it.key = ""
		return false
	}
}
