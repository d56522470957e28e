package metrics

import (
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/openmetrics"
)

// LazyCounter reports a total computed by a callback at encode time, for
// counters maintained outside the process such as kernel statistics or a
// storage engine's own accounting. The callback runs once per encode, must be
// safe for concurrent use and cheap to call, and must return non-decreasing
// values; monotonicity is the caller's responsibility.
type LazyCounter struct {
	fetch   func() uint64
	created time.Time
}

// NewLazyCounter returns a counter sampling fetch at encode time.
func NewLazyCounter(fetch func() uint64) (*LazyCounter, error) {
	if fetch == nil {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "fetch callback must not be nil"),
		)
	}
	return &LazyCounter{fetch: fetch, created: time.Now()}, nil
}

// MustNewLazyCounter is NewLazyCounter that panics on error.
func MustNewLazyCounter(fetch func() uint64) *LazyCounter {
	c, err := NewLazyCounter(fetch)
	if err != nil {
		panic(err)
	}
	return c
}

// Created returns the counter's creation timestamp.
func (c *LazyCounter) Created() time.Time { return c.created }

// MetricType implements openmetrics.Metric.
func (c *LazyCounter) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeCounter }

// Empty implements openmetrics.Metric.
func (c *LazyCounter) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (c *LazyCounter) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeCounter(openmetrics.Uint64Number(c.fetch()), nil, c.created)
}

// LazyFloatCounter is LazyCounter for floating point totals.
type LazyFloatCounter struct {
	fetch   func() float64
	created time.Time
}

// NewLazyFloatCounter returns a float counter sampling fetch at encode time.
func NewLazyFloatCounter(fetch func() float64) (*LazyFloatCounter, error) {
	if fetch == nil {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "fetch callback must not be nil"),
		)
	}
	return &LazyFloatCounter{fetch: fetch, created: time.Now()}, nil
}

// MustNewLazyFloatCounter is NewLazyFloatCounter that panics on error.
func MustNewLazyFloatCounter(fetch func() float64) *LazyFloatCounter {
	c, err := NewLazyFloatCounter(fetch)
	if err != nil {
		panic(err)
	}
	return c
}

// Created returns the counter's creation timestamp.
func (c *LazyFloatCounter) Created() time.Time { return c.created }

// MetricType implements openmetrics.Metric.
func (c *LazyFloatCounter) MetricType() openmetrics.MetricType {
	return openmetrics.MetricTypeCounter
}

// Empty implements openmetrics.Metric.
func (c *LazyFloatCounter) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (c *LazyFloatCounter) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeCounter(openmetrics.Float64Number(c.fetch()), nil, c.created)
}

// LazyGauge reports a signed integer value computed by a callback at encode
// time, for values that are cheaper to read on demand than to track
// continuously, such as a queue length or an open file descriptor count.
type LazyGauge struct {
	fetch func() int64
}

// NewLazyGauge returns a gauge sampling fetch at encode time.
func NewLazyGauge(fetch func() int64) (*LazyGauge, error) {
	if fetch == nil {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "fetch callback must not be nil"),
		)
	}
	return &LazyGauge{fetch: fetch}, nil
}

// MustNewLazyGauge is NewLazyGauge that panics on error.
func MustNewLazyGauge(fetch func() int64) *LazyGauge {
	g, err := NewLazyGauge(fetch)
	if err != nil {
		panic(err)
	}
	return g
}

// MetricType implements openmetrics.Metric.
func (g *LazyGauge) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeGauge }

// Empty implements openmetrics.Metric.
func (g *LazyGauge) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (g *LazyGauge) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeGauge(openmetrics.Int64Number(g.fetch()))
}

// LazyFloatGauge is LazyGauge for floating point values.
type LazyFloatGauge struct {
	fetch func() float64
}

// NewLazyFloatGauge returns a float gauge sampling fetch at encode time.
func NewLazyFloatGauge(fetch func() float64) (*LazyFloatGauge, error) {
	if fetch == nil {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "fetch callback must not be nil"),
		)
	}
	return &LazyFloatGauge{fetch: fetch}, nil
}

// MustNewLazyFloatGauge is NewLazyFloatGauge that panics on error.
func MustNewLazyFloatGauge(fetch func() float64) *LazyFloatGauge {
	g, err := NewLazyFloatGauge(fetch)
	if err != nil {
		panic(err)
	}
	return g
}

// MetricType implements openmetrics.Metric.
func (g *LazyFloatGauge) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeGauge }

// Empty implements openmetrics.Metric.
func (g *LazyFloatGauge) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (g *LazyFloatGauge) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeGauge(openmetrics.Float64Number(g.fetch()))
}
