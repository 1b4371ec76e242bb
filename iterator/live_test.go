// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package iterator_test

import (
	"testing"

	"github.com/dacapoday/sortab/btree"
	"github.com/dacapoday/sortab/iterator"
	"github.com/stretchr/testify/require"
)

func load(keys ...string) (*btree.BTree, *iterator.Live[btree.Iter]) {
	tree := new(btree.BTree)
	for _, k := range keys {
		tree.Set(k, "v"+k)
	}
	live := new(iterator.Live[btree.Iter])
	live.Load(tree.Iter())
	return tree, live
}

func walk(live *iterator.Live[btree.Iter]) (keys []string) {
	for ok := live.SeekFirst(); ok; ok = live.Next() {
		keys = append(keys, string(live.Key()))
	}
	return
}

func TestLiveSkipsTombstones(t *testing.T) {
	tree, live := load("a", "b", "c", "d", "e")
	tree.Tombstone("a")
	tree.Tombstone("c")
	tree.Tombstone("e")

	require.Equal(t, []string{"b", "d"}, walk(live))

	require.True(t, live.SeekLast())
	require.Equal(t, "d", string(live.Key()))
	require.True(t, live.Prev())
	require.Equal(t, "b", string(live.Key()))
	require.False(t, live.Prev())

	require.True(t, live.Seek([]byte("c")))
	require.Equal(t, "d", string(live.Key()))
	require.Equal(t, "vd", string(live.Val()))
	require.NoError(t, live.Error())
}

func TestLiveAllDead(t *testing.T) {
	tree, live := load("a", "b")
	tree.Tombstone("a")
	tree.Tombstone("b")

	require.False(t, live.SeekFirst())
	require.False(t, live.SeekLast())
	require.False(t, live.After([]byte("")))
	require.False(t, live.Before([]byte("z")))
}

func TestLiveAfterBefore(t *testing.T) {
	tree, live := load("b", "d", "f", "h")

	require.True(t, live.After([]byte("d")))
	require.Equal(t, "f", string(live.Key()))
	require.True(t, live.After([]byte("a")))
	require.Equal(t, "b", string(live.Key()))
	require.False(t, live.After([]byte("h")))

	require.True(t, live.Before([]byte("f")))
	require.Equal(t, "d", string(live.Key()))
	require.True(t, live.Before([]byte("z")))
	require.Equal(t, "h", string(live.Key()))
	require.False(t, live.Before([]byte("b")))

	// dead neighbours are stepped over, the bound itself may be dead
	tree.Tombstone("d")
	tree.Tombstone("f")
	require.True(t, live.After([]byte("d")))
	require.Equal(t, "h", string(live.Key()))
	require.True(t, live.Before([]byte("f")))
	require.Equal(t, "b", string(live.Key()))
}

func TestLiveValidTracksTombstone(t *testing.T) {
	tree, live := load("a", "b")
	require.True(t, live.SeekFirst())
	require.True(t, live.Valid())

	tree.Tombstone("a")
	require.False(t, live.Valid())
	require.True(t, live.Next())
	require.Equal(t, "b", string(live.Key()))
	require.Same(t, live.Iter(), live.Iter())
}
