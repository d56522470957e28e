/*
Package openmetrics provides an in-process metrics data model implementing the
OpenMetrics specification: typed metric primitives, a hierarchical registry, and
encoders producing the OpenMetrics/Prometheus text and protobuf exposition formats.

# Overview

The library is organized around three layers:

1. Metric primitives (package metrics): Counter, Gauge, Histogram, GaugeHistogram,
StateSet, Info and Unknown, backed by lock-free atomic cells (package atomics).
All update operations are safe for concurrent use by multiple goroutines and never
block on OS-level locks; float arithmetic is implemented as a compare-and-swap
retry loop over the value's bit pattern.

2. Metric families (package metrics): Family maps arbitrary label-set values to
lazily constructed metric instances behind a short-held reader-writer lock,
guaranteeing at most one observable instance per distinct label value.
IndexedFamily maps a fixed-cardinality label schema to a pre-sized slot array with
per-slot single initialization, avoiding hashing entirely.

3. Registry and encoders: a Registry is a tree of namespaces holding named metric
families with metadata (name, help, type, unit) and constant labels. Registration
performs grammar validation and rejects duplicates as hard errors. The encoders
(format/text, format/promproto) walk the registry and produce a point-in-time
snapshot in the selected exposition profile.

# Example

	registry, _ := openmetrics.NewRegistry(openmetrics.WithNamespace("myapp"))

	requests := metrics.NewCounter()
	if err := registry.Register("http_requests", "Total HTTP requests", requests); err != nil {
	    // duplicate or invalid registration
	}
	requests.Inc()

	var buf bytes.Buffer
	_ = text.Encode(&buf, registry, text.OpenMetrics1(text.EscapeAllowUTF8))

# Concurrency model

Metric cells use per-cell atomicity only: no cross-cell ordering is implied, and an
encode pass may observe different metrics at slightly different points in time.
Registration and subsystem creation take a write lock on the owning registry node;
encoding takes short read locks while copying each node's entry list.

# Errors

All failures are classified by four sentinel kinds: ErrInvalid, ErrDuplicated,
ErrUnsupported and ErrUnexpected, matchable with errors.Is. A failed registration
leaves the registry unchanged; a failed encode leaves the output writer in an
unspecified partially written state.
*/
package openmetrics
