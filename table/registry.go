// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package table

import "github.com/google/uuid"

// Register records an open cursor so that Close can invalidate it.
// The returned id is passed back to Release when the cursor closes.
func (t *Table) Register(c Cursor) (uuid.UUID, error) {
	if err := t.check(); err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	t.cursors.Store(id, c)
	if err := t.check(); err != nil {
		// Close ran its sweep before the store above
		t.cursors.Delete(id)
		return uuid.Nil, err
	}
	t.logger.Debug().Str("table", t.name).Str("cursor", id.String()).Msg("cursor opened")
	return id, nil
}

// Release forgets a cursor registered with Register.
func (t *Table) Release(id uuid.UUID) {
	if _, ok := t.cursors.LoadAndDelete(id); ok {
		t.logger.Debug().Str("table", t.name).Str("cursor", id.String()).Msg("cursor closed")
	}
}

// Cursors returns the number of open cursors.
func (t *Table) Cursors() int {
	return t.cursors.Size()
}
