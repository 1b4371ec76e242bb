// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
	"github.com/phuslu/log"
)

// Option configures a Table at creation.
type Option func(*Table)

// WithLogger routes table and cursor logging to logger.
// Without it nothing is written.
func WithLogger(logger *log.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics registers the table's counters in set instead of a private one.
func WithMetrics(set *metrics.Set) Option {
	return func(t *Table) {
		if set != nil {
			t.set = set
		}
	}
}

func discardLogger() *log.Logger {
	return &log.Logger{
		Level:  log.ErrorLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
