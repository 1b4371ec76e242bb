// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package cursortest

import (
	"fmt"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab"
	"github.com/dacapoday/sortab/codec"
	"github.com/dacapoday/sortab/cursor"
	"github.com/dacapoday/sortab/table"
	"github.com/stretchr/testify/require"
)

// Factory creates an empty table with the given format. The suite closes it.
type Factory func(t *testing.T, format codec.Format) *table.Table

// Kind is a table layout the suite runs against.
type Kind struct {
	Name   string
	Format codec.Format
}

// Kinds are the layouts every scenario runs against.
var Kinds = []Kind{
	{"row", codec.Format{Key: codec.KeyString, Value: codec.ValueFormat{Kind: codec.ValueString}}},
	{"col", codec.Format{Key: codec.KeyRecno, Value: codec.ValueFormat{Kind: codec.ValueString}}},
}

// Run runs the conformance suite.
func Run(t *testing.T, name string, factory Factory) {
	t.Run(name, func(t *testing.T) {
		for _, kind := range Kinds {
			t.Run(kind.Name, func(t *testing.T) {
				run := func(name string, fn func(*testing.T, *tracker)) {
					t.Run(name, func(t *testing.T) {
						tbl := factory(t, kind.Format)
						defer tbl.Close()
						fn(t, &tracker{t: t, tbl: tbl, recno: kind.Format.Key == codec.KeyRecno})
					})
				}
				run("IterateEmpty", testIterateEmpty)
				run("IterateOnePreexisting", testIterateOnePreexisting)
				run("IterateOneAdded", testIterateOneAdded)
				run("ForwardBackward", testForwardBackward)
				run("MultipleRemove", testMultipleRemove)
				run("InsertAndRemove", testInsertAndRemove)
				run("InsertOutOfOrder", testInsertOutOfOrder)
				run("ExhaustionRestarts", testExhaustionRestarts)
				run("Search", testSearch)
				run("RemoveUnpositioned", testRemoveUnpositioned)
				run("IndependentCursors", testIndependentCursors)
				run("Closed", testClosed)
				run("AppendMonotonic", testAppendMonotonic)
			})
		}
	})
}

// tracker keeps the keys the table should hold, as integers.
type tracker struct {
	t     *testing.T
	tbl   *table.Table
	recno bool
	keys  []int
}

// key maps n to a table key whose order matches n's order.
func (tr *tracker) key(n int) any {
	if tr.recno {
		return uint64(n)
	}
	return fmt.Sprintf("key%06d", n)
}

func (tr *tracker) value(n int) string {
	return fmt.Sprintf("value%06d", n)
}

func (tr *tracker) open(mode cursor.Mode) *cursor.Cursor {
	tr.t.Helper()
	c, err := cursor.Open(tr.tbl, mode)
	require.NoError(tr.t, err)
	return c
}

// fill inserts keys 1..n and returns an append-mode cursor.
func (tr *tracker) fill(n int) *cursor.Cursor {
	tr.t.Helper()
	c := tr.open(cursor.Append)
	for i := 1; i <= n; i++ {
		tr.insert(c, i)
	}
	return c
}

func (tr *tracker) insert(c *cursor.Cursor, n int) {
	tr.t.Helper()
	require.NoError(tr.t, c.SetKey(tr.key(n)))
	require.NoError(tr.t, c.SetValue(tr.value(n)))
	require.NoError(tr.t, c.Insert())
	if i, found := slices.BinarySearch(tr.keys, n); !found {
		tr.keys = slices.Insert(tr.keys, i, n)
	}
}

// here asserts the cursor is at n with n's value.
func (tr *tracker) here(c *cursor.Cursor, n int) {
	tr.t.Helper()
	key, err := c.Key()
	require.NoError(tr.t, err)
	require.Equal(tr.t, tr.key(n), key)
	val, err := c.Value()
	require.NoError(tr.t, err)
	require.Equal(tr.t, tr.value(n), string(val))
}

// current returns the tracked index of the cursor's key.
func (tr *tracker) current(c *cursor.Cursor) int {
	tr.t.Helper()
	key, err := c.Key()
	require.NoError(tr.t, err)
	for i, n := range tr.keys {
		if tr.key(n) == key {
			return i
		}
	}
	tr.t.Fatalf("cursor at untracked key %v", key)
	return -1
}

// removeHere removes the record at the cursor and returns its former index,
// which is where the following Next lands.
func (tr *tracker) removeHere(c *cursor.Cursor) int {
	tr.t.Helper()
	i := tr.current(c)
	require.NoError(tr.t, c.Remove())
	tr.keys = slices.Delete(tr.keys, i, i+1)
	return i
}

// forward calls Next count times checking each landing; count < 0 walks
// to the end and expects ErrNotFound.
func (tr *tracker) forward(c *cursor.Cursor, from, count int) {
	tr.t.Helper()
	for i := from; count < 0 || i < from+count; i++ {
		err := c.Next()
		if i >= len(tr.keys) {
			requireNotFound(tr.t, err)
			require.False(tr.t, c.Positioned())
			return
		}
		require.NoError(tr.t, err)
		tr.here(c, tr.keys[i])
	}
}

func (tr *tracker) backward(c *cursor.Cursor, from, count int) {
	tr.t.Helper()
	for i := from; count < 0 || i > from-count; i-- {
		err := c.Prev()
		if i < 0 {
			requireNotFound(tr.t, err)
			require.False(tr.t, c.Positioned())
			return
		}
		require.NoError(tr.t, err)
		tr.here(c, tr.keys[i])
	}
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, sortab.IsNotFound(err), "want not found, got %v", err)
}

func requireInvalidState(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, sortab.ErrInvalidState), "want invalid state, got %v", err)
}
