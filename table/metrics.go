// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

type storeMetrics struct {
	insert   *metrics.Counter
	update   *metrics.Counter
	remove   *metrics.Counter
	lookup   *metrics.Counter
	navigate *metrics.Counter
	append   *metrics.Counter
	notFound *metrics.Counter
	compact  *metrics.Counter
}

func newStoreMetrics(set *metrics.Set, t *Table) *storeMetrics {
	op := func(name string) *metrics.Counter {
		return set.GetOrCreateCounter(fmt.Sprintf(`sortab_store_ops_total{table=%q,op=%q}`, t.name, name))
	}
	set.GetOrCreateGauge(fmt.Sprintf(`sortab_live_records{table=%q}`, t.name), func() float64 {
		return float64(t.Len())
	})
	set.GetOrCreateGauge(fmt.Sprintf(`sortab_open_cursors{table=%q}`, t.name), func() float64 {
		return float64(t.Cursors())
	})
	return &storeMetrics{
		insert:   op("insert"),
		update:   op("update"),
		remove:   op("remove"),
		lookup:   op("lookup"),
		navigate: op("navigate"),
		append:   op("append"),
		compact:  op("compact"),
		notFound: set.GetOrCreateCounter(fmt.Sprintf(`sortab_not_found_total{table=%q}`, t.name)),
	}
}
