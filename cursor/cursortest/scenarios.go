// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package cursortest

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab"
	"github.com/dacapoday/sortab/cursor"
	"github.com/stretchr/testify/require"
)

func testIterateEmpty(t *testing.T, tr *tracker) {
	c := tr.fill(0)
	defer c.Close()

	requireNotFound(t, c.First())
	require.False(t, c.Positioned())
	tr.forward(c, 0, -1)
	tr.backward(c, -1, -1)
	requireNotFound(t, c.Last())
	tr.backward(c, -1, -1)
	tr.forward(c, 0, -1)
}

func testIterateOnePreexisting(t *testing.T, tr *tracker) {
	c := tr.fill(1)
	defer c.Close()
	iterateOne(t, tr, c)
}

func testIterateOneAdded(t *testing.T, tr *tracker) {
	c := tr.fill(0)
	defer c.Close()

	tr.insert(c, 1)
	tr.forward(c, 1, -1)
	iterateOne(t, tr, c)
}

func iterateOne(t *testing.T, tr *tracker, c *cursor.Cursor) {
	require.NoError(t, c.First())
	tr.here(c, 1)
	first, err := c.Key()
	require.NoError(t, err)
	tr.forward(c, 1, -1)
	tr.backward(c, 0, -1)

	require.NoError(t, c.Last())
	tr.here(c, 1)
	last, err := c.Key()
	require.NoError(t, err)
	require.Equal(t, first, last)
	tr.backward(c, -1, -1)
	tr.forward(c, 0, -1)
}

func testForwardBackward(t *testing.T, tr *tracker) {
	c := tr.fill(10)
	defer c.Close()

	require.NoError(t, c.First())
	require.Equal(t, cursor.Forward, c.Direction())
	tr.here(c, 1)
	tr.forward(c, 1, -1)

	require.NoError(t, c.Last())
	require.Equal(t, cursor.Backward, c.Direction())
	tr.here(c, 10)
	tr.backward(c, 8, -1)
}

func testMultipleRemove(t *testing.T, tr *tracker) {
	c := tr.fill(10)
	defer c.Close()

	require.NoError(t, c.First())
	tr.forward(c, 1, 5)

	i := tr.removeHere(c)
	tr.forward(c, i, 1)

	i = tr.removeHere(c)
	tr.forward(c, i, 1)
	tr.forward(c, i+1, 2)
	tr.forward(c, i+3, -1)

	// from the front: each remove+next lands on the original successor
	require.NoError(t, c.First())
	tr.here(c, 1)
	tr.removeHere(c)
	require.NoError(t, c.Next())
	tr.here(c, 2)
	i = tr.removeHere(c)
	require.NoError(t, c.Next())
	tr.here(c, 3)
	tr.forward(c, i+1, -1)
}

func testInsertAndRemove(t *testing.T, tr *tracker) {
	c := tr.open(cursor.Append)
	defer c.Close()
	for n := 10; n <= 100; n += 10 {
		tr.insert(c, n)
	}
	tr.insert(c, 25)
	tr.insert(c, 26)
	tr.insert(c, 24)
	tr.insert(c, 27)

	require.NoError(t, c.First())
	tr.forward(c, 1, 5)
	i := tr.removeHere(c)
	tr.forward(c, i, 5)
	i = tr.removeHere(c)
	tr.forward(c, i, 1)
	i = tr.removeHere(c)
	tr.forward(c, i, 2)
	tr.backward(c, i, 4)
	i = tr.removeHere(c)
	tr.backward(c, i-1, 2)
	tr.forward(c, i-1, 5)
	tr.backward(c, tr.current(c)-1, -1)
	tr.forward(c, 0, -1)

	require.NoError(t, c.Last())
	tr.here(c, tr.keys[len(tr.keys)-1])
	tr.backward(c, len(tr.keys)-2, -1)
	require.Len(t, tr.keys, 10)
	require.Equal(t, 10, tr.tbl.Len())
}

func testInsertOutOfOrder(t *testing.T, tr *tracker) {
	c := tr.fill(4)
	defer c.Close()

	for _, n := range []int{6, 8, 5, 7} {
		tr.insert(c, n)
	}
	require.NoError(t, c.First())
	tr.here(c, 1)
	tr.forward(c, 1, -1)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, tr.keys)
}

func testExhaustionRestarts(t *testing.T, tr *tracker) {
	c := tr.fill(3)
	defer c.Close()

	require.NoError(t, c.Last())
	requireNotFound(t, c.Next())
	require.NoError(t, c.Next())
	tr.here(c, 1)

	requireNotFound(t, c.Prev())
	require.NoError(t, c.Prev())
	tr.here(c, 3)

	// a record added by another cursor after exhaustion is found by the restart
	requireNotFound(t, c.Next())
	other := tr.open(0)
	tr.insert(other, 4)
	require.NoError(t, other.Close())
	require.NoError(t, c.Next())
	tr.here(c, 1)
	tr.forward(c, 1, -1)
}

func testSearch(t *testing.T, tr *tracker) {
	c := tr.fill(5)
	defer c.Close()

	require.NoError(t, c.Last())
	require.NoError(t, c.Search(tr.key(3)))
	tr.here(c, 3)
	require.Equal(t, cursor.Forward, c.Direction())
	tr.forward(c, 3, 1)

	requireNotFound(t, c.Search(tr.key(42)))
	require.False(t, c.Positioned())
	tr.forward(c, 0, 1)

	require.NoError(t, c.Search(tr.key(2)))
	tr.removeHere(c)
	requireNotFound(t, c.Search(tr.key(2)))

	// the wrong key type is rejected and the position kept
	require.NoError(t, c.Search(tr.key(4)))
	var wrong any = "4"
	if !tr.recno {
		wrong = 4
	}
	err := c.Search(wrong)
	require.True(t, errors.Is(err, sortab.ErrInvalidArgument), "%v", err)
	tr.here(c, 4)
}

func testRemoveUnpositioned(t *testing.T, tr *tracker) {
	c := tr.fill(3)
	defer c.Close()
	require.NoError(t, c.Reset())

	requireNotFound(t, c.Remove())
	_, err := c.Key()
	requireInvalidState(t, err)
	_, err = c.Value()
	requireInvalidState(t, err)

	require.NoError(t, c.Search(tr.key(2)))
	tr.removeHere(c)
	_, err = c.Key()
	requireInvalidState(t, err)
	_, err = c.Value()
	requireInvalidState(t, err)
	requireNotFound(t, c.Remove())

	// the ghost still anchors both directions
	tr.backward(c, 0, 1)
	require.NoError(t, c.Search(tr.key(3)))
	tr.removeHere(c)
	tr.insert(c, 2)
	tr.here(c, 2)
	require.Equal(t, []int{1, 2}, tr.keys)
	tr.forward(c, 2, -1)
}

func testIndependentCursors(t *testing.T, tr *tracker) {
	a := tr.fill(5)
	defer a.Close()
	b := tr.open(0)
	defer b.Close()
	require.Equal(t, 2, tr.tbl.Cursors())

	require.NoError(t, a.First())
	require.NoError(t, b.First())
	require.NoError(t, b.Next())
	require.NoError(t, a.Next())
	tr.here(a, 2)
	tr.removeHere(a)

	// b still sits on 2 but reads the store, not a cached copy
	_, err := b.Value()
	requireNotFound(t, err)
	require.NoError(t, b.Next())
	tr.here(b, 3)

	require.NoError(t, a.Search(tr.key(4)))
	tr.removeHere(a)
	require.NoError(t, b.Next())
	tr.here(b, 5)

	tr.insert(a, 6)
	tr.here(b, 5)
	require.NoError(t, b.Next())
	tr.here(b, 6)
}

func testClosed(t *testing.T, tr *tracker) {
	c := tr.fill(1)
	require.NoError(t, c.First())
	require.NoError(t, c.Close())
	require.Equal(t, 0, tr.tbl.Cursors())

	_, keyErr := c.Key()
	_, valErr := c.Value()
	for _, err := range []error{
		c.First(), c.Last(), c.Next(), c.Prev(),
		c.Search(tr.key(1)), c.SetKey(tr.key(1)), c.SetValue("v"),
		c.Insert(), c.Update(), c.Remove(), c.Reset(), c.Close(),
		keyErr, valErr,
	} {
		requireInvalidState(t, err)
		require.True(t, errors.Is(err, sortab.ErrClosed), "%v", err)
	}

	// closing the table closes what is still open
	d := tr.open(0)
	require.NoError(t, tr.tbl.Close())
	err := d.First()
	requireInvalidState(t, err)
	require.True(t, errors.Is(err, sortab.ErrClosed))

	_, err = cursor.Open(tr.tbl, 0)
	requireInvalidState(t, err)
}

func testAppendMonotonic(t *testing.T, tr *tracker) {
	c := tr.fill(3)
	defer c.Close()

	require.NoError(t, c.SetValue("appended"))
	if !tr.recno {
		err := c.Insert()
		require.True(t, errors.Is(err, sortab.ErrInvalidArgument), "%v", err)
		return
	}

	var got []uint64
	appendOne := func() {
		require.NoError(t, c.SetValue("appended"))
		require.NoError(t, c.Insert())
		key, err := c.Key()
		require.NoError(t, err)
		got = append(got, key.(uint64))
	}

	require.NoError(t, c.Insert())
	key, err := c.Key()
	require.NoError(t, err)
	got = append(got, key.(uint64))

	// remove the newest, then an older record, between appends
	require.NoError(t, c.Remove())
	appendOne()
	require.NoError(t, c.Search(uint64(2)))
	require.NoError(t, c.Remove())
	appendOne()
	require.NoError(t, c.Remove())
	appendOne()

	require.Equal(t, []uint64{4, 5, 6, 7}, got)

	// a plain cursor on the same table needs a key
	plain := tr.open(0)
	defer plain.Close()
	require.NoError(t, plain.SetValue("v"))
	err = plain.Insert()
	require.True(t, errors.Is(err, sortab.ErrInvalidArgument), "%v", err)
}
