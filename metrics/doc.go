// Package metrics provides the concrete metric primitives of the data model:
// Counter, Gauge, Histogram, GaugeHistogram, StateSet, Info, Unknown and their
// constant (point-in-time) variants, plus the Family and IndexedFamily
// containers mapping label sets to per-series instances.
//
// All primitives are safe for concurrent use. Updates are lock-free atomic
// operations; Family uses a short-held reader-writer lock only to create
// missing series, and IndexedFamily avoids locking entirely after a slot's
// first use.
package metrics
