// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab"
	"github.com/dacapoday/sortab/codec"
	"github.com/dacapoday/sortab/cursor"
	"github.com/dacapoday/sortab/table"
)

// command is one parsed script line.
type command struct {
	line   int
	op     string
	key    string
	hasKey bool
	val    string
	hasVal bool
}

// ops lists the script operations and how many operands each takes.
var ops = map[string]struct{ min, max int }{
	"first":   {0, 0},
	"last":    {0, 0},
	"next":    {0, 0},
	"prev":    {0, 0},
	"get":     {0, 0},
	"remove":  {0, 0},
	"reset":   {0, 0},
	"dump":    {0, 0},
	"compact": {0, 0},
	"search":  {1, 1},
	"insert":  {1, 2},
	"update":  {1, 2},
}

// parseScript reads one operation per line. Blank lines and lines starting
// with '#' are skipped. insert and update take "KEY VALUE" or just "VALUE";
// the value is the rest of the line and may contain spaces.
func parseScript(r io.Reader) (cmds []command, err error) {
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		op, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		arity, ok := ops[op]
		if !ok {
			return nil, errors.Wrapf(sortab.ErrInvalidArgument, "line %d: unknown operation %q", n, op)
		}

		cmd := command{line: n, op: op}
		switch {
		case arity.max == 0 && rest != "":
			return nil, errors.Wrapf(sortab.ErrInvalidArgument, "line %d: %s takes no operand", n, op)
		case arity.min > 0 && rest == "":
			return nil, errors.Wrapf(sortab.ErrInvalidArgument, "line %d: %s needs an operand", n, op)
		case op == "search":
			cmd.key, cmd.hasKey = rest, true
		case arity.max == 2:
			if key, val, found := strings.Cut(rest, " "); found {
				cmd.key, cmd.hasKey = key, true
				cmd.val, cmd.hasVal = strings.TrimSpace(val), true
			} else {
				cmd.val, cmd.hasVal = rest, true
			}
		}
		cmds = append(cmds, cmd)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read script")
	}
	return
}

// runner executes commands through one cursor and prints every outcome.
type runner struct {
	tbl   *table.Table
	cur   *cursor.Cursor
	codec *codec.Codec
	out   io.Writer
}

func newRunner(tbl *table.Table, mode cursor.Mode, out io.Writer) (*runner, error) {
	c, err := cursor.Open(tbl, mode)
	if err != nil {
		return nil, err
	}
	return &runner{tbl: tbl, cur: c, codec: tbl.Codec(), out: out}, nil
}

func (r *runner) Close() error {
	return r.cur.Close()
}

// run executes cmds in order. Failed operations are reported and skipped;
// only output errors stop the run.
func (r *runner) run(cmds []command) error {
	for _, cmd := range cmds {
		if err := r.exec(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) exec(cmd command) error {
	var err error
	switch cmd.op {
	case "first":
		err = r.cur.First()
	case "last":
		err = r.cur.Last()
	case "next":
		err = r.cur.Next()
	case "prev":
		err = r.cur.Prev()
	case "search":
		var key any
		if key, err = r.parseKey(cmd.key); err == nil {
			err = r.cur.Search(key)
		}
	case "get":
	case "insert", "update":
		err = r.write(cmd)
	case "remove":
		if err = r.cur.Remove(); err == nil {
			return r.printf("%s ok\n", cmd.op)
		}
	case "reset":
		if err = r.cur.Reset(); err == nil {
			return r.printf("%s ok\n", cmd.op)
		}
	case "compact":
		var n int
		if n, err = r.tbl.Compact(); err == nil {
			return r.printf("%s %d\n", cmd.op, n)
		}
	case "dump":
		return r.dump()
	}
	if err != nil {
		return r.failed(cmd.op, err)
	}
	return r.here(cmd.op)
}

func (r *runner) write(cmd command) error {
	if cmd.hasKey {
		key, err := r.parseKey(cmd.key)
		if err != nil {
			return err
		}
		if err = r.cur.SetKey(key); err != nil {
			return err
		}
	}
	if err := r.cur.SetValue(cmd.val); err != nil {
		return err
	}
	if cmd.op == "update" {
		return r.cur.Update()
	}
	return r.cur.Insert()
}

// parseKey turns script text into a key of the table's kind.
func (r *runner) parseKey(s string) (any, error) {
	if !r.codec.Recno() {
		return s, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(sortab.ErrInvalidArgument, "record number %q", s)
	}
	return n, nil
}

// here prints the record under the cursor.
func (r *runner) here(op string) error {
	key, err := r.cur.Key()
	if err != nil {
		return r.failed(op, err)
	}
	val, err := r.cur.Value()
	if err != nil {
		return r.failed(op, err)
	}
	return r.printf("%s %v %s\n", op, key, val)
}

func (r *runner) failed(op string, err error) error {
	if sortab.IsNotFound(err) {
		return r.printf("%s not found\n", op)
	}
	return r.printf("%s error: %v\n", op, err)
}

func (r *runner) dump() error {
	entries, err := r.tbl.Dump()
	if err != nil {
		return r.failed("dump", err)
	}
	if err = r.printf("dump %d live\n", r.tbl.Len()); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Dead {
			err = r.printf("  %s (removed)\n", r.tbl.Display(e.Key))
		} else {
			err = r.printf("  %s %s\n", r.tbl.Display(e.Key), e.Val)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(r.out, format, args...)
	return errors.Wrap(err, "write output")
}

// preload inserts records 1..n: record numbers on record-number tables,
// zero-padded "key" names otherwise.
func preload(tbl *table.Table, n int) error {
	c := tbl.Codec()
	width := 0
	if f := c.Format().Value; f.Kind == codec.ValueFixed {
		width = f.Width
	}
	for i := 1; i <= n; i++ {
		var k any = fmt.Sprintf("key%06d", i)
		if c.Recno() {
			k = uint64(i)
		}
		key, err := c.EncodeKey(k)
		if err != nil {
			return err
		}
		val := fmt.Sprintf("value%06d", i)
		if width > 0 {
			val = fmt.Sprintf("%-*.*s", width, width, val)
		}
		if err = tbl.Insert(key, val); err != nil {
			return err
		}
	}
	return nil
}
