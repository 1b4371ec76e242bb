// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package cursor

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode is a set of cursor flags chosen at open.
type Mode uint8

const (
	// Append lets Insert without a key take the next record number.
	// Only meaningful on record-number tables.
	Append Mode = 1 << iota
)

func (m Mode) String() string {
	if m&Append != 0 {
		return "append"
	}
	return ""
}

// ParseMode parses a comma separated flag list such as "append".
func ParseMode(config string) (mode Mode, err error) {
	for flag := range strings.SplitSeq(config, ",") {
		switch strings.TrimSpace(flag) {
		case "":
		case "append", "append=true":
			mode |= Append
		case "append=false":
			mode &^= Append
		default:
			err = errors.Wrapf(ErrInvalidArgument, "cursor mode %q", flag)
			return
		}
	}
	return
}

// Direction is the direction of the last successful move.
type Direction uint8

const (
	None Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}
