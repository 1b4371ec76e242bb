// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package sortab

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound reports an absent key or exhausted iteration.
	// It is an expected outcome, callers branch on it.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState reports misuse of a cursor or table.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidArgument reports a key or value the table's codec rejects.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClosed marks invalid-state errors caused by a closed cursor or table.
	ErrClosed = errors.New("closed")
)

// IsNotFound reports whether err carries ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Closed returns an ErrInvalidState error that is also marked as ErrClosed.
func Closed(what string) error {
	return errors.Mark(errors.Wrapf(ErrInvalidState, "%s is closed", what), ErrClosed)
}
