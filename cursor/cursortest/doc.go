// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package cursortest provides a conformance suite for cursors over a table.
//
// The suite runs every scenario against a string-keyed ("row") and a
// record-number-keyed ("col") table, tracking the expected contents itself
// and comparing them with what the cursor observes.
//
//	func TestCursor(t *testing.T) {
//	    cursortest.Run(t, "memory", func(t *testing.T, format codec.Format) *table.Table {
//	        tbl, err := table.New(t.Name(), format)
//	        require.NoError(t, err)
//	        return tbl
//	    })
//	}
package cursortest
