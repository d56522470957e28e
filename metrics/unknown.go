package metrics

import (
	"time"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/atomics"
)

// Unknown is an untyped sample value, for bridging foreign metrics whose type
// is not known. Prefer a typed metric whenever the semantics are known.
type Unknown struct {
	value atomics.Float64
}

// NewUnknown returns an untyped metric starting at zero.
func NewUnknown() *Unknown { return &Unknown{} }

// Set stores v and returns the previous value.
func (u *Unknown) Set(v float64) float64 { return u.value.Set(v) }

// Get returns the current value.
func (u *Unknown) Get() float64 { return u.value.Get() }

// MetricType implements openmetrics.Metric.
func (u *Unknown) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeUnknown }

// Empty implements openmetrics.Metric.
func (u *Unknown) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (u *Unknown) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeUnknown(openmetrics.Float64Number(u.value.Get()))
}

// ConstUnknown is an immutable untyped sample.
type ConstUnknown struct {
	value openmetrics.Number
	ts    time.Time
	hasTS bool
}

// NewConstUnknown returns a constant untyped sample.
func NewConstUnknown(v openmetrics.Number) ConstUnknown {
	return ConstUnknown{value: v}
}

// WithTimestamp returns a copy carrying an explicit sample timestamp.
func (u ConstUnknown) WithTimestamp(t time.Time) ConstUnknown {
	u.ts = t
	u.hasTS = true
	return u
}

// MetricType implements openmetrics.Metric.
func (u ConstUnknown) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeUnknown }

// Empty implements openmetrics.Metric.
func (u ConstUnknown) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (u ConstUnknown) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeUnknown(u.value)
}

// Timestamp implements openmetrics.TimestampedMetric.
func (u ConstUnknown) Timestamp() (time.Time, bool) { return u.ts, u.hasTS }
