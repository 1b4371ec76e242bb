// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package sortab

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestClosedMatchesBothSentinels(t *testing.T) {
	err := Closed("cursor")
	// marks are only visible to errors.Is from cockroachdb/errors
	require.True(t, errors.Is(err, ErrInvalidState))
	require.True(t, errors.Is(err, ErrClosed))
	require.False(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), "cursor is closed")
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(ErrNotFound))
	require.True(t, IsNotFound(errors.Wrap(ErrNotFound, "next")))
	require.False(t, IsNotFound(ErrInvalidArgument))
	require.False(t, IsNotFound(nil))
}
