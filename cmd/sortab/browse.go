// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab/cursor"
	"github.com/dacapoday/sortab/table"
	"golang.org/x/term"
)

// browse shows the table a screen at a time.
//
//	j/↓    scroll down
//	k/↑    scroll up
//	g      jump to first
//	G      jump to last
//	/      search key (exact match)
//	x      remove the top record
//	q/Esc  quit
func browse(tbl *table.Table) error {
	c, err := cursor.Open(tbl, 0)
	if err != nil {
		return err
	}
	defer c.Close()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "browse needs a terminal")
	}
	defer term.Restore(fd, oldState)

	v := &viewer{tbl: tbl, cur: c, runner: &runner{tbl: tbl, cur: c, codec: tbl.Codec()}}
	v.updateSize()
	v.first()

	fmt.Print("\033[?25l\033[2J")             // hide cursor, clear screen once
	defer fmt.Print("\033[?25h\033[2J\033[H") // show cursor, clear screen

	reader := bufio.NewReader(os.Stdin)
	for {
		if v.updateSize() {
			v.load()
		}
		v.render()

		b, err := reader.ReadByte()
		if err != nil {
			return nil
		}
		v.status = ""

		switch b {
		case 'q', 3, 27: // q, Ctrl+C, Esc
			if b == 27 && reader.Buffered() > 0 {
				b2, _ := reader.ReadByte()
				if b2 == '[' {
					b3, _ := reader.ReadByte()
					switch b3 {
					case 'A':
						v.up()
					case 'B':
						v.down()
					case '5':
						reader.ReadByte()
						v.pageUp()
					case '6':
						reader.ReadByte()
						v.pageDown()
					}
				}
				continue
			}
			return nil
		case 'j':
			v.down()
		case 'k':
			v.up()
		case 'g':
			v.first()
		case 'G':
			v.last()
		case 'x':
			v.remove()
		case '/':
			v.search(reader)
		}
	}
}

type item struct {
	key any
	val []byte
}

// viewer keeps a window of records. Every scroll re-anchors the cursor on a
// window edge by key, so records removed meanwhile are simply skipped.
type viewer struct {
	tbl     *table.Table
	cur     *cursor.Cursor
	runner  *runner
	items   []item
	width   int
	height  int
	atStart bool
	atEnd   bool
	status  string
}

func (v *viewer) updateSize() bool {
	w, h, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		w, h = 80, 24
	}
	if w == v.width && h == v.height {
		return false
	}
	v.width, v.height = w, h
	return true
}

func (v *viewer) lines() int {
	return v.height - 4 // title + separator + separator + status
}

// current reads the record under the cursor.
func (v *viewer) current() (item, bool) {
	key, err := v.cur.Key()
	if err != nil {
		return item{}, false
	}
	val, err := v.cur.Value()
	if err != nil {
		return item{}, false
	}
	return item{key: key, val: val}, true
}

// load fills the window starting at the cursor, or at the first record
// when the cursor is unpositioned.
func (v *viewer) load() {
	v.items = nil
	v.atStart, v.atEnd = false, false

	if !v.cur.Positioned() && v.cur.First() != nil {
		v.atStart, v.atEnd = true, true
		return
	}

	for len(v.items) < v.lines() {
		it, ok := v.current()
		if !ok {
			break
		}
		v.items = append(v.items, it)
		if v.cur.Next() != nil {
			v.atEnd = true
			break
		}
	}
	v.anchorTop()
}

// anchorTop parks the cursor on the top record and notes whether
// anything lies before it.
func (v *viewer) anchorTop() {
	if len(v.items) == 0 {
		v.cur.Reset()
		return
	}
	v.cur.Search(v.items[0].key)
	v.atStart = v.cur.Prev() != nil
	v.cur.Search(v.items[0].key)
}

func (v *viewer) down() {
	if len(v.items) == 0 {
		return
	}
	if v.cur.Search(v.items[len(v.items)-1].key) == nil && v.cur.Next() == nil {
		if it, ok := v.current(); ok {
			v.items = append(v.items[1:], it)
			v.atStart = false
			v.atEnd = v.cur.Next() != nil
			v.cur.Search(v.items[0].key)
			return
		}
	}
	if len(v.items) > 1 {
		v.items = v.items[1:]
		v.atEnd = true
		v.cur.Search(v.items[0].key)
	}
}

func (v *viewer) up() {
	if v.atStart || len(v.items) == 0 {
		return
	}
	if v.cur.Search(v.items[0].key) != nil || v.cur.Prev() != nil {
		v.load()
		return
	}
	it, ok := v.current()
	if !ok {
		return
	}
	if len(v.items) >= v.lines() {
		v.items = append([]item{it}, v.items[:len(v.items)-1]...)
	} else {
		v.items = append([]item{it}, v.items...)
	}
	v.atEnd = false
	v.anchorTop()
}

func (v *viewer) pageDown() {
	for range v.lines() - 1 {
		v.down()
	}
}

func (v *viewer) pageUp() {
	for range v.lines() - 1 {
		v.up()
	}
}

func (v *viewer) first() {
	v.cur.Reset()
	v.load()
}

func (v *viewer) last() {
	if v.cur.Last() != nil {
		v.load()
		return
	}
	for range v.lines() - 1 {
		if v.cur.Prev() != nil {
			v.cur.First()
			break
		}
	}
	v.load()
}

// remove deletes the top record and reloads from its successor.
func (v *viewer) remove() {
	if len(v.items) == 0 {
		return
	}
	top := v.items[0]
	if err := v.cur.Search(top.key); err != nil {
		v.status = err.Error()
		return
	}
	if err := v.cur.Remove(); err != nil {
		v.status = err.Error()
		return
	}
	v.status = fmt.Sprintf("removed: %s", display([]byte(fmt.Sprint(top.key)), 20))
	if v.cur.Next() != nil {
		v.cur.Reset()
	}
	v.load()
}

func (v *viewer) search(reader *bufio.Reader) {
	fmt.Print("\033[?25h") // show cursor
	fmt.Printf("\033[%d;1H\033[K/", v.height)

	var input []byte
	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if b == 27 || b == 3 { // Esc or Ctrl+C
			fmt.Print("\033[?25l")
			return
		}
		if b == 13 || b == 10 { // Enter
			break
		}
		if b == 127 || b == 8 { // Backspace
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Print("\b \b")
			}
			continue
		}
		if b >= 32 && b < 127 {
			input = append(input, b)
			fmt.Print(string(b))
		}
	}
	fmt.Print("\033[?25l")

	if len(input) == 0 {
		return
	}
	key, err := v.runner.parseKey(string(input))
	if err == nil {
		err = v.cur.Search(key)
	}
	if err != nil {
		v.status = "not found"
		v.anchorTop()
		return
	}
	v.load()
	v.status = fmt.Sprintf("jumped to: %s", display(input, 20))
}

func (v *viewer) render() {
	var b strings.Builder

	b.WriteString("\033[H")

	fmt.Fprintf(&b, "[ sortab %s: %d records ]\033[K\r\n", v.tbl.Codec().Format(), v.tbl.Len())
	b.WriteString(strings.Repeat("─", v.width))
	b.WriteString("\033[K\r\n")

	keyWidth := 32
	valWidth := max(v.width-keyWidth-4, 20)

	for i := range v.lines() {
		if i < len(v.items) {
			it := v.items[i]
			b.WriteString(display([]byte(fmt.Sprint(it.key)), keyWidth))
			b.WriteString(": ")
			b.WriteString(display(it.val, valWidth))
		} else {
			b.WriteString("~")
		}
		b.WriteString("\033[K\r\n")
	}

	b.WriteString(strings.Repeat("─", v.width))
	b.WriteString("\033[K\r\n")

	pos := ""
	switch {
	case v.atStart && v.atEnd:
		pos = "[all]"
	case v.atStart:
		pos = "[top]"
	case v.atEnd:
		pos = "[end]"
	}

	if v.status != "" {
		b.WriteString(" " + v.status + " " + pos)
	} else {
		b.WriteString(" j/k:scroll g/G:jump /:search x:remove q:quit " + pos)
	}
	b.WriteString("\033[K")

	fmt.Print(b.String())
}

// display formats bytes for display, truncating if needed.
// Printable UTF-8 is shown as text, anything else as hex.
func display(b []byte, maxLen int) string {
	if len(b) == 0 {
		return "(empty)"
	}
	if utf8.Valid(b) && isPrintable(b) {
		runes := []rune(string(b))
		if len(runes) > maxLen-3 {
			return string(runes[:maxLen-3]) + "..."
		}
		return string(runes)
	}
	hex := fmt.Sprintf("%x", b)
	if len(hex) > maxLen-3 {
		return hex[:maxLen-3] + "..."
	}
	return hex
}

func isPrintable(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
