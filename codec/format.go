// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package codec resolves a table's key and value formats into a typed Codec.
//
// Keys are normalized into strings whose bytewise order is the table's key order:
// string keys are stored as-is, record numbers as 8-byte big-endian integers.
package codec

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// KeyFormat selects the key domain of a table.
type KeyFormat uint8

const (
	// KeyString orders opaque byte keys lexicographically.
	KeyString KeyFormat = iota + 1
	// KeyRecno orders record numbers numerically, starting at 1.
	KeyRecno
)

func (f KeyFormat) String() string {
	switch f {
	case KeyString:
		return "S"
	case KeyRecno:
		return "r"
	default:
		return "invalid"
	}
}

// ParseKeyFormat accepts "S" (string) and "r" (record number).
func ParseKeyFormat(s string) (KeyFormat, error) {
	switch s {
	case "S":
		return KeyString, nil
	case "r":
		return KeyRecno, nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "key_format %q", s)
	}
}

// ValueKind selects how values are validated.
type ValueKind uint8

const (
	ValueString ValueKind = iota + 1
	ValueFixed
)

// ValueFormat is a value encoding. Width is the byte width of ValueFixed values.
type ValueFormat struct {
	Kind  ValueKind
	Width int
}

func (f ValueFormat) String() string {
	switch f.Kind {
	case ValueString:
		return "S"
	case ValueFixed:
		return strconv.Itoa(f.Width) + "t"
	default:
		return "invalid"
	}
}

// ParseValueFormat accepts "S" (variable length) and "<n>t" (exactly n bytes).
func ParseValueFormat(s string) (ValueFormat, error) {
	if s == "S" {
		return ValueFormat{Kind: ValueString}, nil
	}
	if n, ok := strings.CutSuffix(s, "t"); ok {
		width, err := strconv.Atoi(n)
		if err == nil && width > 0 {
			return ValueFormat{Kind: ValueFixed, Width: width}, nil
		}
	}
	return ValueFormat{}, errors.Wrapf(ErrInvalidArgument, "value_format %q", s)
}

// Format pairs a key format with a value format.
type Format struct {
	Key   KeyFormat
	Value ValueFormat
}

// Default is key_format=S,value_format=S.
var Default = Format{Key: KeyString, Value: ValueFormat{Kind: ValueString}}

func (f Format) String() string {
	return "key_format=" + f.Key.String() + ",value_format=" + f.Value.String()
}

// Validate rejects zero or out-of-range variants.
func (f Format) Validate() error {
	switch f.Key {
	case KeyString, KeyRecno:
	default:
		return errors.Wrapf(ErrInvalidArgument, "key format %d", f.Key)
	}
	switch f.Value.Kind {
	case ValueString:
	case ValueFixed:
		if f.Value.Width <= 0 {
			return errors.Wrapf(ErrInvalidArgument, "fixed value width %d", f.Value.Width)
		}
	default:
		return errors.Wrapf(ErrInvalidArgument, "value kind %d", f.Value.Kind)
	}
	return nil
}

// ParseFormat parses a comma separated configuration such as
// "key_format=r,value_format=S". Omitted entries keep their Default.
func ParseFormat(config string) (format Format, err error) {
	format = Default
	for item := range strings.SplitSeq(config, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, val, ok := strings.Cut(item, "=")
		if !ok {
			err = errors.Wrapf(ErrInvalidArgument, "config item %q", item)
			return
		}
		switch strings.TrimSpace(name) {
		case "key_format":
			format.Key, err = ParseKeyFormat(strings.TrimSpace(val))
		case "value_format":
			format.Value, err = ParseValueFormat(strings.TrimSpace(val))
		default:
			err = errors.Wrapf(ErrInvalidArgument, "unknown config key %q", name)
		}
		if err != nil {
			return
		}
	}
	return
}
