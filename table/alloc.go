// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"github.com/cockroachdb/errors"
	"github.com/dacapoday/sortab/codec"
)

// allocator hands out record numbers for append-mode inserts.
//
// high is the largest record number ever inserted or handed out. Every key
// enters the table through Insert, so before the first allocation high equals
// the largest key present, tombstones included. Numbers are never reused.
type allocator struct {
	high uint64
}

func (a *allocator) observe(recno uint64) {
	if recno > a.high {
		a.high = recno
	}
}

func (a *allocator) next() uint64 {
	a.high++
	return a.high
}

// NextRecno reserves the next unused record number.
// Only record-number tables have an allocator.
func (t *Table) NextRecno() (uint64, error) {
	if !t.codec.Recno() {
		return 0, errors.Wrapf(ErrInvalidArgument, "table %s: append needs record-number keys", t.name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(); err != nil {
		return 0, err
	}
	return t.alloc.next(), nil
}

// Append inserts val under a freshly allocated record number and returns the encoded key.
func (t *Table) Append(val string) (key string, recno uint64, err error) {
	if !t.codec.Recno() {
		err = errors.Wrapf(ErrInvalidArgument, "table %s: append needs record-number keys", t.name)
		return
	}
	t.mu.Lock()
	if err = t.check(); err != nil {
		t.mu.Unlock()
		return
	}
	recno = t.alloc.next()
	key = codec.EncodeRecno(recno)
	t.tree.Set(key, val)
	t.mu.Unlock()

	t.metrics.append.Inc()
	return
}
