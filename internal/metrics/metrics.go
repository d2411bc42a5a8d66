// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package metrics wires the codec's counters into Prometheus, matching the
// teacher repo's go.mod dependency on github.com/prometheus/client_golang.
// A pure in-memory value-node codec has no request latency to speak of, but
// it does have two operationally meaningful signals a caller running many
// Parser/Writer instances would want to track: how often parses fail and
// how much of each arena's budget gets used.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ParseFailures counts Parse calls that returned a non-nil error.
	ParseFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arenajson",
		Subsystem: "parser",
		Name:      "parse_failures_total",
		Help:      "Number of Parse calls that failed (syntax error, depth exceeded, arena exhausted).",
	})

	// ArenaBytesUsed records the byte arena's committed chunk storage after
	// each Parse call, a gauge rather than a counter since Reset can shrink
	// logical usage without returning chunks to the OS.
	ArenaBytesUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "arenajson",
		Subsystem: "parser",
		Name:      "arena_bytes_used",
		Help:      "Bytes committed to the parser's arena chunk chain.",
	})

	// WriterStickyErrors counts Get calls that observed the writer's sticky
	// error flag set, spec.md §4.6.
	WriterStickyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "arenajson",
		Subsystem: "writer",
		Name:      "sticky_errors_total",
		Help:      "Number of Get calls that returned a latched writer error.",
	})
)

func init() {
	prometheus.MustRegister(ParseFailures, ArenaBytesUsed, WriterStickyErrors)
}
