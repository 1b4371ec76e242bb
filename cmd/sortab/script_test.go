// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab"
	"github.com/dacapoday/sortab/codec"
	"github.com/dacapoday/sortab/cursor"
	"github.com/dacapoday/sortab/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	cmds, err := parseScript(strings.NewReader(`
# comment
first
  search key 1
insert v
insert k hello world
update 7 x
`))
	require.NoError(t, err)
	assert.Equal(t, []command{
		{line: 3, op: "first"},
		{line: 4, op: "search", key: "key 1", hasKey: true},
		{line: 5, op: "insert", val: "v", hasVal: true},
		{line: 6, op: "insert", key: "k", hasKey: true, val: "hello world", hasVal: true},
		{line: 7, op: "update", key: "7", hasKey: true, val: "x", hasVal: true},
	}, cmds)
}

func TestParseScriptErrors(t *testing.T) {
	for _, script := range []string{
		"jump",
		"first now",
		"search",
		"insert",
		"next\nremove all",
	} {
		t.Run(script, func(t *testing.T) {
			_, err := parseScript(strings.NewReader(script))
			require.True(t, errors.Is(err, sortab.ErrInvalidArgument), "%v", err)
			assert.Contains(t, err.Error(), "line ")
		})
	}
}

func runScript(t *testing.T, tbl *table.Table, mode cursor.Mode, script string) string {
	t.Helper()
	cmds, err := parseScript(strings.NewReader(script))
	require.NoError(t, err)
	var out bytes.Buffer
	r, err := newRunner(tbl, mode, &out)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.run(cmds))
	return out.String()
}

func TestRunRowScript(t *testing.T) {
	tbl, err := table.New("row", codec.Default)
	require.NoError(t, err)
	defer tbl.Close()

	out := runScript(t, tbl, 0, `
insert b two
insert a one
insert c three
first
next
remove
next
prev
search b
search c
get
dump
compact
next
next
`)
	assert.Equal(t, `insert b two
insert a one
insert c three
first a one
next b two
remove ok
next c three
prev a one
search not found
search c three
get c three
dump 2 live
  a one
  b (removed)
  c three
compact 1
next not found
next a one
`, out)
}

func TestRunColumnScript(t *testing.T) {
	format, err := codec.ParseFormat("key_format=r")
	require.NoError(t, err)
	tbl, err := table.New("col", format)
	require.NoError(t, err)
	defer tbl.Close()
	require.NoError(t, preload(tbl, 3))

	out := runScript(t, tbl, cursor.Append, `
insert fourth
insert 2 deux
update 3 trois
search 9
last
prev
reset
get
`)
	assert.Equal(t, `insert 4 fourth
insert 2 deux
update 3 trois
search not found
last 4 fourth
prev 3 trois
reset ok
`, out[:strings.LastIndex(out, "get")])
	assert.True(t, strings.HasPrefix(out[strings.LastIndex(out, "get"):], "get error: "))

	out = runScript(t, tbl, 0, "search x\ninsert fifth\n")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "invalid argument")
	assert.Contains(t, lines[1], "key not set")
}

func TestPreloadFixedWidth(t *testing.T) {
	format, err := codec.ParseFormat("key_format=S,value_format=4t")
	require.NoError(t, err)
	tbl, err := table.New("fixed", format)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, preload(tbl, 2))
	entries, err := tbl.Dump()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "key000001", entries[0].Key)
	assert.Equal(t, "valu", entries[0].Val)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "(empty)", display(nil, 10))
	assert.Equal(t, "hello", display([]byte("hello"), 10))
	assert.Equal(t, "hello w...", display([]byte("hello world!"), 10))
	assert.Equal(t, "0001", display([]byte{0, 1}, 10))
}
