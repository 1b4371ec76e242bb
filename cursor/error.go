// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package cursor

import "github.com/dacapoday/sortab"

var (
	ErrNotFound        = sortab.ErrNotFound
	ErrInvalidState    = sortab.ErrInvalidState
	ErrInvalidArgument = sortab.ErrInvalidArgument
	ErrClosed          = sortab.ErrClosed
)
