// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package sortab defines the error taxonomy shared by the sorted table and its cursors.
//
// The engine is split into small packages:
//   - codec: key and value formats, resolved once per table
//   - btree: in-memory ordered index holding live and tombstoned records
//   - iterator: iteration contracts and the tombstone-skipping wrapper
//   - table: the ordered table store and the append allocator
//   - cursor: the positioned, bidirectional cursor
//   - cursor/cursortest: a conformance suite for cursors over any table
//
// The sortab command in cmd/sortab runs cursor scripts against a table.
package sortab
