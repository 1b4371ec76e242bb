// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab/codec"
	"github.com/stretchr/testify/require"
)

var recnoFormat = codec.Format{Key: codec.KeyRecno, Value: codec.ValueFormat{Kind: codec.ValueString}}

func newTable(t *testing.T, format codec.Format) *Table {
	t.Helper()
	tbl, err := New(t.Name(), format)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func recno(n uint64) string { return codec.EncodeRecno(n) }

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound), "want not found, got %v", err)
}

func TestNewRejectsBadFormat(t *testing.T) {
	_, err := New("bad", codec.Format{})
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestInsertLookupOverwrite(t *testing.T) {
	tbl := newTable(t, codec.Default)

	require.NoError(t, tbl.Insert("k", "v1"))
	val, err := tbl.Lookup("k")
	require.NoError(t, err)
	require.Equal(t, "v1", val)

	require.NoError(t, tbl.Insert("k", "v2"))
	val, err = tbl.Lookup("k")
	require.NoError(t, err)
	require.Equal(t, "v2", val)
	require.Equal(t, 1, tbl.Len())

	_, err = tbl.Lookup("missing")
	requireNotFound(t, err)
}

func TestRemoveIsTombstone(t *testing.T) {
	tbl := newTable(t, codec.Default)
	require.NoError(t, tbl.Insert("a", "1"))

	require.NoError(t, tbl.Remove("a"))
	requireNotFound(t, tbl.Remove("a"))
	requireNotFound(t, tbl.Remove("never"))
	_, err := tbl.Lookup("a")
	requireNotFound(t, err)
	require.Equal(t, 0, tbl.Len())

	entries, err := tbl.Dump()
	require.NoError(t, err)
	require.Equal(t, []Entry{{Key: "a", Dead: true}}, entries)

	// re-insert revives the key
	require.NoError(t, tbl.Insert("a", "2"))
	val, err := tbl.Lookup("a")
	require.NoError(t, err)
	require.Equal(t, "2", val)
}

func TestUpdate(t *testing.T) {
	tbl := newTable(t, codec.Default)
	requireNotFound(t, tbl.Update("a", "x"))

	require.NoError(t, tbl.Insert("a", "1"))
	require.NoError(t, tbl.Update("a", "2"))
	val, err := tbl.Lookup("a")
	require.NoError(t, err)
	require.Equal(t, "2", val)

	require.NoError(t, tbl.Remove("a"))
	requireNotFound(t, tbl.Update("a", "3"))
}

func TestEmptyNavigation(t *testing.T) {
	tbl := newTable(t, codec.Default)

	_, _, err := tbl.First()
	requireNotFound(t, err)
	_, _, err = tbl.Last()
	requireNotFound(t, err)
	_, _, err = tbl.Successor("")
	requireNotFound(t, err)
	_, _, err = tbl.Predecessor("z")
	requireNotFound(t, err)
}

func TestNeighboursSkipTombstones(t *testing.T) {
	tbl := newTable(t, recnoFormat)
	for i := uint64(1); i <= 10; i++ {
		require.NoError(t, tbl.Insert(recno(i), fmt.Sprint(i)))
	}
	require.NoError(t, tbl.Remove(recno(1)))
	require.NoError(t, tbl.Remove(recno(5)))
	require.NoError(t, tbl.Remove(recno(6)))
	require.NoError(t, tbl.Remove(recno(10)))

	key, val, err := tbl.First()
	require.NoError(t, err)
	require.Equal(t, recno(2), key)
	require.Equal(t, "2", val)

	key, _, err = tbl.Last()
	require.NoError(t, err)
	require.Equal(t, recno(9), key)

	// the bound itself is dead
	key, _, err = tbl.Successor(recno(5))
	require.NoError(t, err)
	require.Equal(t, recno(7), key)
	key, _, err = tbl.Predecessor(recno(6))
	require.NoError(t, err)
	require.Equal(t, recno(4), key)

	_, _, err = tbl.Successor(recno(9))
	requireNotFound(t, err)
	_, _, err = tbl.Predecessor(recno(2))
	requireNotFound(t, err)
}

func TestNextRecno(t *testing.T) {
	tbl := newTable(t, recnoFormat)
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, tbl.Insert(recno(i), "v"))
	}
	// tombstoned keys still count as existing
	require.NoError(t, tbl.Remove(recno(4)))

	n, err := tbl.NextRecno()
	require.NoError(t, err)
	require.Equal(t, uint64(5), n)

	// an explicit insert above the counter is skipped over
	require.NoError(t, tbl.Insert(recno(9), "v"))
	n, err = tbl.NextRecno()
	require.NoError(t, err)
	require.Equal(t, uint64(10), n)

	_, got, err := tbl.Append("appended")
	require.NoError(t, err)
	require.Equal(t, uint64(11), got)

	// removals never free a number
	require.NoError(t, tbl.Remove(recno(11)))
	_, got, err = tbl.Append("again")
	require.NoError(t, err)
	require.Equal(t, uint64(12), got)
}

func TestNextRecnoEmptyTable(t *testing.T) {
	tbl := newTable(t, recnoFormat)
	key, n, err := tbl.Append("first")
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
	require.Equal(t, recno(1), key)
}

func TestAppendNeedsRecno(t *testing.T) {
	tbl := newTable(t, codec.Default)
	_, err := tbl.NextRecno()
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, _, err = tbl.Append("v")
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestCompactKeepsLiveOrderAndCounter(t *testing.T) {
	tbl := newTable(t, recnoFormat)
	for range 20 {
		_, _, err := tbl.Append("v")
		require.NoError(t, err)
	}
	for i := uint64(2); i <= 20; i += 2 {
		require.NoError(t, tbl.Remove(recno(i)))
	}

	n, err := tbl.Compact()
	require.NoError(t, err)
	require.Equal(t, 10, n)

	entries, err := tbl.Dump()
	require.NoError(t, err)
	require.Len(t, entries, 10)
	for i, e := range entries {
		require.Equal(t, recno(uint64(2*i+1)), e.Key)
		require.False(t, e.Dead)
	}

	// 20 was reclaimed but is never handed out again
	_, got, err := tbl.Append("v")
	require.NoError(t, err)
	require.Equal(t, uint64(21), got)
}

type fakeCursor struct{ closed int }

func (c *fakeCursor) Close() error {
	c.closed++
	return nil
}

func TestCloseInvalidatesCursorsAndOps(t *testing.T) {
	tbl, err := New("closing", codec.Default)
	require.NoError(t, err)

	c1, c2 := new(fakeCursor), new(fakeCursor)
	id1, err := tbl.Register(c1)
	require.NoError(t, err)
	_, err = tbl.Register(c2)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Cursors())

	tbl.Release(id1)
	require.Equal(t, 1, tbl.Cursors())

	require.NoError(t, tbl.Close())
	require.True(t, tbl.Closed())
	require.Equal(t, 0, c1.closed)
	require.Equal(t, 1, c2.closed)
	require.Equal(t, 0, tbl.Cursors())

	for _, err := range []error{
		tbl.Close(),
		tbl.Insert("a", "b"),
		tbl.Remove("a"),
		func() error { _, _, err := tbl.First(); return err }(),
		func() error { _, err := tbl.Register(c1); return err }(),
	} {
		require.True(t, errors.Is(err, ErrInvalidState), "%v", err)
		require.True(t, errors.Is(err, ErrClosed), "%v", err)
	}
}

func TestMetrics(t *testing.T) {
	set := metrics.NewSet()
	tbl, err := New("m", codec.Default, WithMetrics(set))
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.Insert("a", "1"))
	require.NoError(t, tbl.Update("a", "2"))
	require.NoError(t, tbl.Remove("a"))
	requireNotFound(t, tbl.Remove("a"))
	_, _, err = tbl.First()
	requireNotFound(t, err)

	var buf bytes.Buffer
	set.WritePrometheus(&buf)
	out := buf.String()
	require.Contains(t, out, `sortab_store_ops_total{table="m",op="insert"} 1`)
	require.Contains(t, out, `sortab_store_ops_total{table="m",op="update"} 1`)
	require.Contains(t, out, `sortab_store_ops_total{table="m",op="remove"} 2`)
	require.Contains(t, out, `sortab_not_found_total{table="m"} 2`)
	require.Contains(t, out, `sortab_live_records{table="m"} 0`)
	require.Same(t, set, tbl.Metrics())
}

func TestConcurrentReadersSeeWrites(t *testing.T) {
	tbl := newTable(t, recnoFormat)
	for range 100 {
		_, _, err := tbl.Append("v")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := uint64(w + 1); i <= 100; i += 4 {
				_ = tbl.Remove(recno(i))
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, _, err := tbl.First()
			for err == nil {
				key, _, err = tbl.Successor(key)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 0, tbl.Len())
	_, _, err := tbl.First()
	requireNotFound(t, err)
}

func TestCloseRacesWriters(t *testing.T) {
	for range 20 {
		tbl := newTable(t, recnoFormat)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for w := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := uint64(1); ; i++ {
					key := recno(i*4 + uint64(w))
					var err error
					switch i % 4 {
					case 0:
						err = tbl.Insert(key, "v")
					case 1:
						err = tbl.Update(key, "v")
					case 2:
						_, _, err = tbl.Append("v")
					case 3:
						err = tbl.Remove(key)
					}
					if errors.Is(err, ErrClosed) {
						return
					}
				}
			}()
		}
		close(start)
		require.NoError(t, tbl.Close())
		wg.Wait()

		// nothing lands in the tree once Close has reset it
		require.Zero(t, tbl.tree.Len())
		require.Zero(t, tbl.tree.Live())
	}
}
