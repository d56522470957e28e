package metrics

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/atomics"
)

// Counter is a monotonically increasing integer counter. The zero value is
// unusable; use NewCounter, which records the creation timestamp emitted by
// OpenMetrics profiles as the _created series.
type Counter struct {
	total    atomics.Uint64
	exemplar atomic.Pointer[openmetrics.Exemplar]
	created  time.Time
}

// NewCounter returns a counter starting at zero.
func NewCounter() *Counter {
	return &Counter{created: time.Now()}
}

// Inc adds 1 and returns the previous total.
func (c *Counter) Inc() uint64 { return c.total.Inc() }

// Add adds delta and returns the previous total.
func (c *Counter) Add(delta uint64) uint64 { return c.total.Add(delta) }

// Set raises the total to v and returns the previous total. It panics when v
// is below the current total; counters are monotonic.
func (c *Counter) Set(v uint64) uint64 {
	return c.total.Update(func(old uint64) uint64 {
		if v < old {
			panic("metrics: Counter.Set below the current total")
		}
		return v
	})
}

// Total returns the current total.
func (c *Counter) Total() uint64 { return c.total.Get() }

// Created returns the counter's creation timestamp.
func (c *Counter) Created() time.Time { return c.created }

// SetExemplar attaches an exemplar to the counter, replacing any previous one.
func (c *Counter) SetExemplar(e openmetrics.Exemplar) {
	c.exemplar.Store(&e)
}

// MetricType implements openmetrics.Metric.
func (c *Counter) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeCounter }

// Empty implements openmetrics.Metric. A counter always exposes its total.
func (c *Counter) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (c *Counter) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeCounter(openmetrics.Uint64Number(c.total.Get()), c.exemplar.Load(), c.created)
}

// FloatCounter is a monotonically increasing floating point counter. Use it
// when increments are fractional; prefer Counter otherwise, integer totals
// never lose precision in exposition.
type FloatCounter struct {
	total    atomics.Float64
	exemplar atomic.Pointer[openmetrics.Exemplar]
	created  time.Time
}

// NewFloatCounter returns a float counter starting at zero.
func NewFloatCounter() *FloatCounter {
	return &FloatCounter{created: time.Now()}
}

// Inc adds 1 and returns the previous total.
func (c *FloatCounter) Inc() float64 { return c.total.Inc() }

// Add adds delta and returns the previous total. It panics when delta is
// negative or NaN: a counter total must never decrease or become unordered.
func (c *FloatCounter) Add(delta float64) float64 {
	if delta < 0 || math.IsNaN(delta) {
		panic("metrics: FloatCounter.Add with negative or NaN delta")
	}
	return c.total.Add(delta)
}

// Set raises the total to v and returns the previous total. It panics when v
// is NaN or below the current total; counters are monotonic.
func (c *FloatCounter) Set(v float64) float64 {
	if math.IsNaN(v) {
		panic("metrics: FloatCounter.Set with NaN")
	}
	return c.total.Update(func(old float64) float64 {
		if v < old {
			panic("metrics: FloatCounter.Set below the current total")
		}
		return v
	})
}

// Total returns the current total.
func (c *FloatCounter) Total() float64 { return c.total.Get() }

// Created returns the counter's creation timestamp.
func (c *FloatCounter) Created() time.Time { return c.created }

// SetExemplar attaches an exemplar to the counter, replacing any previous one.
func (c *FloatCounter) SetExemplar(e openmetrics.Exemplar) {
	c.exemplar.Store(&e)
}

// MetricType implements openmetrics.Metric.
func (c *FloatCounter) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeCounter }

// Empty implements openmetrics.Metric.
func (c *FloatCounter) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (c *FloatCounter) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeCounter(openmetrics.Float64Number(c.total.Get()), c.exemplar.Load(), c.created)
}

// ConstCounter is an immutable counter sample, used to expose totals computed
// elsewhere (another process, a kernel counter, a storage engine).
type ConstCounter struct {
	total   openmetrics.Number
	created time.Time
	ts      time.Time
	hasTS   bool
}

// NewConstCounter returns a constant integer counter sample.
func NewConstCounter(total uint64) ConstCounter {
	return ConstCounter{total: openmetrics.Uint64Number(total)}
}

// NewConstFloatCounter returns a constant float counter sample.
func NewConstFloatCounter(total float64) ConstCounter {
	return ConstCounter{total: openmetrics.Float64Number(total)}
}

// WithCreated returns a copy carrying the given creation timestamp.
func (c ConstCounter) WithCreated(t time.Time) ConstCounter {
	c.created = t
	return c
}

// WithTimestamp returns a copy carrying an explicit sample timestamp.
func (c ConstCounter) WithTimestamp(t time.Time) ConstCounter {
	c.ts = t
	c.hasTS = true
	return c
}

// MetricType implements openmetrics.Metric.
func (c ConstCounter) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeCounter }

// Empty implements openmetrics.Metric.
func (c ConstCounter) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (c ConstCounter) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeCounter(c.total, nil, c.created)
}

// Timestamp implements openmetrics.TimestampedMetric.
func (c ConstCounter) Timestamp() (time.Time, bool) { return c.ts, c.hasTS }
