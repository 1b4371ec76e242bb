// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/dacapoday/sortab"

var ErrInvalidArgument = sortab.ErrInvalidArgument
