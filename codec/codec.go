// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Codec converts caller keys and values into the table's stored form.
// It is built once per table and never re-parses its format.
type Codec struct {
	format Format
}

// New validates format and returns its codec.
func New(format Format) (*Codec, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return &Codec{format}, nil
}

// Format returns the format the codec was built from.
func (c *Codec) Format() Format {
	return c.format
}

// Recno reports whether keys are record numbers.
func (c *Codec) Recno() bool {
	return c.format.Key == KeyRecno
}

// EncodeKey normalizes key into its ordered form.
//
// String tables accept string and []byte. Record-number tables accept
// any Go integer >= 1; everything else is ErrInvalidArgument.
func (c *Codec) EncodeKey(key any) (string, error) {
	if c.format.Key == KeyRecno {
		recno, ok := toRecno(key)
		if !ok {
			return "", errors.Wrapf(ErrInvalidArgument, "record number key %v (%T)", key, key)
		}
		return EncodeRecno(recno), nil
	}
	switch k := key.(type) {
	case string:
		return k, nil
	case []byte:
		return string(k), nil
	default:
		return "", errors.Wrapf(ErrInvalidArgument, "string key %v (%T)", key, key)
	}
}

// DecodeKey returns a string for string tables and a uint64 for record-number tables.
func (c *Codec) DecodeKey(key string) any {
	if c.format.Key == KeyRecno {
		return DecodeRecno(key)
	}
	return key
}

// EncodeValue accepts string and []byte; fixed-width tables require exactly Width bytes.
func (c *Codec) EncodeValue(val any) (v string, err error) {
	switch x := val.(type) {
	case string:
		v = x
	case []byte:
		if x == nil {
			return "", errors.Wrap(ErrInvalidArgument, "nil value")
		}
		v = string(x)
	default:
		return "", errors.Wrapf(ErrInvalidArgument, "value %v (%T)", val, val)
	}
	if c.format.Value.Kind == ValueFixed && len(v) != c.format.Value.Width {
		return "", errors.Wrapf(ErrInvalidArgument, "value of %d bytes, want %d", len(v), c.format.Value.Width)
	}
	return v, nil
}

const recnoSize = 8

// EncodeRecno returns the big-endian form of recno, which sorts numerically.
func EncodeRecno(recno uint64) string {
	var b [recnoSize]byte
	binary.BigEndian.PutUint64(b[:], recno)
	return string(b[:])
}

// DecodeRecno is the inverse of EncodeRecno. Malformed input decodes to 0.
func DecodeRecno(key string) uint64 {
	if len(key) != recnoSize {
		return 0
	}
	return binary.BigEndian.Uint64([]byte(key))
}

func toRecno(key any) (uint64, bool) {
	var n int64
	switch k := key.(type) {
	case uint64:
		return k, k >= 1
	case uint:
		return uint64(k), k >= 1
	case uint32:
		return uint64(k), k >= 1
	case uint16:
		return uint64(k), k >= 1
	case uint8:
		return uint64(k), k >= 1
	case int:
		n = int64(k)
	case int64:
		n = k
	case int32:
		n = int64(k)
	case int16:
		n = int64(k)
	case int8:
		n = int64(k)
	default:
		return 0, false
	}
	return uint64(n), n >= 1
}
