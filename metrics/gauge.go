package metrics

import (
	"time"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/atomics"
)

// Gauge is a signed integer value that can go up and down.
type Gauge struct {
	value atomics.Int64
}

// NewGauge returns a gauge starting at zero.
func NewGauge() *Gauge { return &Gauge{} }

// Inc adds 1 and returns the previous value.
func (g *Gauge) Inc() int64 { return g.value.Inc() }

// Dec subtracts 1 and returns the previous value.
func (g *Gauge) Dec() int64 { return g.value.Dec() }

// Add adds delta and returns the previous value.
func (g *Gauge) Add(delta int64) int64 { return g.value.Add(delta) }

// Sub subtracts delta and returns the previous value.
func (g *Gauge) Sub(delta int64) int64 { return g.value.Sub(delta) }

// AddSaturating adds delta, clamping at the int64 bounds instead of wrapping,
// and returns the previous value.
func (g *Gauge) AddSaturating(delta int64) int64 { return g.value.AddSaturating(delta) }

// SubSaturating subtracts delta with clamping and returns the previous value.
func (g *Gauge) SubSaturating(delta int64) int64 { return g.value.SubSaturating(delta) }

// Set stores v and returns the previous value.
func (g *Gauge) Set(v int64) int64 { return g.value.Set(v) }

// Get returns the current value.
func (g *Gauge) Get() int64 { return g.value.Get() }

// Update applies f atomically and returns the previous value. f may run more
// than once under contention and must be pure.
func (g *Gauge) Update(f func(int64) int64) int64 { return g.value.Update(f) }

// MetricType implements openmetrics.Metric.
func (g *Gauge) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeGauge }

// Empty implements openmetrics.Metric.
func (g *Gauge) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (g *Gauge) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeGauge(openmetrics.Int64Number(g.value.Get()))
}

// FloatGauge is a floating point value that can go up and down.
type FloatGauge struct {
	value atomics.Float64
}

// NewFloatGauge returns a float gauge starting at zero.
func NewFloatGauge() *FloatGauge { return &FloatGauge{} }

// Inc adds 1 and returns the previous value.
func (g *FloatGauge) Inc() float64 { return g.value.Inc() }

// Dec subtracts 1 and returns the previous value.
func (g *FloatGauge) Dec() float64 { return g.value.Dec() }

// Add adds delta and returns the previous value.
func (g *FloatGauge) Add(delta float64) float64 { return g.value.Add(delta) }

// Sub subtracts delta and returns the previous value.
func (g *FloatGauge) Sub(delta float64) float64 { return g.value.Sub(delta) }

// Set stores v and returns the previous value.
func (g *FloatGauge) Set(v float64) float64 { return g.value.Set(v) }

// Get returns the current value.
func (g *FloatGauge) Get() float64 { return g.value.Get() }

// Update applies f atomically and returns the previous value. f may run more
// than once under contention and must be pure.
func (g *FloatGauge) Update(f func(float64) float64) float64 { return g.value.Update(f) }

// MetricType implements openmetrics.Metric.
func (g *FloatGauge) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeGauge }

// Empty implements openmetrics.Metric.
func (g *FloatGauge) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (g *FloatGauge) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeGauge(openmetrics.Float64Number(g.value.Get()))
}

// ConstGauge is an immutable gauge sample for values computed elsewhere.
type ConstGauge struct {
	value openmetrics.Number
	ts    time.Time
	hasTS bool
}

// NewConstGauge returns a constant integer gauge sample.
func NewConstGauge(v int64) ConstGauge {
	return ConstGauge{value: openmetrics.Int64Number(v)}
}

// NewConstFloatGauge returns a constant float gauge sample.
func NewConstFloatGauge(v float64) ConstGauge {
	return ConstGauge{value: openmetrics.Float64Number(v)}
}

// WithTimestamp returns a copy carrying an explicit sample timestamp.
func (g ConstGauge) WithTimestamp(t time.Time) ConstGauge {
	g.ts = t
	g.hasTS = true
	return g
}

// MetricType implements openmetrics.Metric.
func (g ConstGauge) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeGauge }

// Empty implements openmetrics.Metric.
func (g ConstGauge) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (g ConstGauge) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeGauge(g.value)
}

// Timestamp implements openmetrics.TimestampedMetric.
func (g ConstGauge) Timestamp() (time.Time, bool) { return g.ts, g.hasTS }
