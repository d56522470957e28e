package metrics

import (
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/atomics"
)

// DefBuckets are the default histogram bucket upper bounds, tuned for request
// latencies in seconds.
var DefBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// LinearBuckets returns count upper bounds starting at start and spaced width
// apart. It panics when count is not positive or width is not positive.
func LinearBuckets(start, width float64, count int) []float64 {
	if count < 1 {
		panic("metrics: LinearBuckets needs a positive count")
	}
	if width <= 0 {
		panic("metrics: LinearBuckets needs a positive width")
	}
	bounds := make([]float64, count)
	for i := range bounds {
		bounds[i] = start + float64(i)*width
	}
	return bounds
}

// ExponentialBuckets returns count upper bounds starting at start, each
// multiplied by factor. It panics when count is not positive, start is not
// positive, or factor is not greater than 1.
func ExponentialBuckets(start, factor float64, count int) []float64 {
	if count < 1 {
		panic("metrics: ExponentialBuckets needs a positive count")
	}
	if start <= 0 {
		panic("metrics: ExponentialBuckets needs a positive start")
	}
	if factor <= 1 {
		panic("metrics: ExponentialBuckets needs a factor greater than 1")
	}
	bounds := make([]float64, count)
	for i := range bounds {
		bounds[i] = start
		start *= factor
	}
	return bounds
}

// ExponentialBucketsRange returns count upper bounds exponentially spaced
// between min and max inclusive. It panics when count is not positive or the
// range is not positive and increasing.
func ExponentialBucketsRange(min, max float64, count int) []float64 {
	if count < 1 {
		panic("metrics: ExponentialBucketsRange needs a positive count")
	}
	if min <= 0 || max <= min {
		panic("metrics: ExponentialBucketsRange needs 0 < min < max")
	}
	if count == 1 {
		return []float64{min}
	}
	growth := math.Pow(max/min, 1/float64(count-1))
	bounds := make([]float64, count)
	v := min
	for i := range bounds {
		bounds[i] = v
		v *= growth
	}
	bounds[count-1] = max
	return bounds
}

// normalizeBounds sanitizes user supplied upper bounds: NaN bounds are
// dropped, negative bounds are dropped when dropNegative is set, the rest are
// sorted and deduplicated, and a terminal +Inf bound is guaranteed.
func normalizeBounds(bounds []float64, dropNegative bool) []float64 {
	kept := make([]float64, 0, len(bounds)+1)
	for _, b := range bounds {
		if math.IsNaN(b) {
			continue
		}
		if dropNegative && b < 0 {
			continue
		}
		if math.IsInf(b, 1) {
			continue
		}
		kept = append(kept, b)
	}
	sort.Float64s(kept)
	dedup := kept[:0]
	for i, b := range kept {
		if i > 0 && b == kept[i-1] {
			continue
		}
		dedup = append(dedup, b)
	}
	return append(dedup, math.Inf(1))
}

// bucketIndex returns the index of the first bound with v <= bound. NaN
// observations land in the terminal +Inf bucket.
func bucketIndex(bounds []float64, v float64) int {
	i := sort.SearchFloat64s(bounds, v)
	if i == len(bounds) {
		i = len(bounds) - 1
	}
	return i
}

// histogramCore carries the shared state of Histogram and GaugeHistogram:
// normalized bounds, per-bucket counters and the running count and sum. Fields
// are updated independently, so an encode pass racing with observations may
// see a count that does not equal the bucket total; successive scrapes
// converge.
type histogramCore struct {
	bounds  []float64
	buckets []atomics.Uint64
	count   atomics.Uint64
	sum     atomics.Float64
}

func (h *histogramCore) init(bounds []float64, dropNegative bool) {
	if len(bounds) == 0 {
		bounds = DefBuckets
	}
	norm := normalizeBounds(bounds, dropNegative)
	h.bounds = norm
	h.buckets = make([]atomics.Uint64, len(norm))
}

func (h *histogramCore) observe(v float64) int {
	i := bucketIndex(h.bounds, v)
	h.buckets[i].Inc()
	h.count.Inc()
	h.sum.Add(v)
	return i
}

func (h *histogramCore) snapshot() (buckets []openmetrics.Bucket, count uint64, sum float64) {
	buckets = make([]openmetrics.Bucket, len(h.bounds))
	for i := range h.bounds {
		buckets[i] = openmetrics.Bucket{
			UpperBound: h.bounds[i],
			Count:      h.buckets[i].Get(),
		}
	}
	return buckets, h.count.Get(), h.sum.Get()
}

// Histogram samples observations into cumulative counting buckets. Negative
// upper bounds are rejected at construction; a terminal +Inf bucket is always
// present, so every observation is counted.
type Histogram struct {
	core      histogramCore
	exemplars []atomic.Pointer[openmetrics.Exemplar]
	created   time.Time
}

// NewHistogram returns a histogram with the given bucket upper bounds, or
// DefBuckets when none are given.
func NewHistogram(bounds ...float64) *Histogram {
	h := &Histogram{created: time.Now()}
	h.core.init(bounds, true)
	h.exemplars = make([]atomic.Pointer[openmetrics.Exemplar], len(h.core.bounds))
	return h
}

// Observe records one observation. NaN and negative values are dropped
// without effect; OpenMetrics forbids negative histogram observations.
func (h *Histogram) Observe(v float64) {
	if math.IsNaN(v) || v < 0 {
		return
	}
	h.core.observe(v)
}

// ObserveWithExemplar records one observation and attaches the exemplar to the
// bucket the observation fell into, replacing any previous one. Dropped
// observations drop their exemplar too.
func (h *Histogram) ObserveWithExemplar(v float64, e openmetrics.Exemplar) {
	if math.IsNaN(v) || v < 0 {
		return
	}
	i := h.core.observe(v)
	h.exemplars[i].Store(&e)
}

// Count returns the number of observations recorded so far.
func (h *Histogram) Count() uint64 { return h.core.count.Get() }

// Sum returns the sum of all observed values.
func (h *Histogram) Sum() float64 { return h.core.sum.Get() }

// Created returns the histogram's creation timestamp.
func (h *Histogram) Created() time.Time { return h.created }

// MetricType implements openmetrics.Metric.
func (h *Histogram) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeHistogram }

// Empty implements openmetrics.Metric.
func (h *Histogram) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (h *Histogram) Encode(enc openmetrics.MetricEncoder) error {
	buckets, count, sum := h.core.snapshot()
	exemplars := make([]*openmetrics.Exemplar, len(h.exemplars))
	for i := range h.exemplars {
		exemplars[i] = h.exemplars[i].Load()
	}
	return enc.EncodeHistogram(buckets, exemplars, count, sum, h.created)
}

// GaugeHistogram samples observations of a current-state distribution, such as
// sizes of items in a queue. Unlike Histogram it accepts negative bucket
// bounds, and exposes _gcount and _gsum instead of _count and _sum.
type GaugeHistogram struct {
	core histogramCore
}

// NewGaugeHistogram returns a gauge histogram with the given bucket upper
// bounds, or DefBuckets when none are given.
func NewGaugeHistogram(bounds ...float64) *GaugeHistogram {
	h := &GaugeHistogram{}
	h.core.init(bounds, false)
	return h
}

// Observe records one observation. NaN values are dropped; negative values
// are legal for gauge histograms.
func (h *GaugeHistogram) Observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	h.core.observe(v)
}

// Count returns the number of observations recorded so far.
func (h *GaugeHistogram) Count() uint64 { return h.core.count.Get() }

// Sum returns the sum of all observed values.
func (h *GaugeHistogram) Sum() float64 { return h.core.sum.Get() }

// MetricType implements openmetrics.Metric.
func (h *GaugeHistogram) MetricType() openmetrics.MetricType {
	return openmetrics.MetricTypeGaugeHistogram
}

// Empty implements openmetrics.Metric.
func (h *GaugeHistogram) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (h *GaugeHistogram) Encode(enc openmetrics.MetricEncoder) error {
	buckets, count, sum := h.core.snapshot()
	return enc.EncodeGaugeHistogram(buckets, count, sum)
}

// ConstHistogram is an immutable histogram sample for distributions computed
// elsewhere. Bucket counts are per-bucket, not cumulative.
type ConstHistogram struct {
	buckets []openmetrics.Bucket
	count   uint64
	sum     float64
	created time.Time
	ts      time.Time
	hasTS   bool
}

// NewConstHistogram builds a constant histogram sample. Bucket upper bounds
// must be strictly increasing and end with +Inf.
func NewConstHistogram(count uint64, sum float64, buckets []openmetrics.Bucket) (ConstHistogram, error) {
	if len(buckets) == 0 || !math.IsInf(buckets[len(buckets)-1].UpperBound, 1) {
		return ConstHistogram{}, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "histogram buckets must end with a +Inf upper bound"),
		)
	}
	for i := 1; i < len(buckets); i++ {
		if !(buckets[i-1].UpperBound < buckets[i].UpperBound) {
			return ConstHistogram{}, errorc.With(openmetrics.ErrInvalid,
				errorc.String("reason", "histogram bucket upper bounds must be strictly increasing"),
			)
		}
	}
	copied := make([]openmetrics.Bucket, len(buckets))
	copy(copied, buckets)
	return ConstHistogram{buckets: copied, count: count, sum: sum}, nil
}

// WithCreated returns a copy carrying the given creation timestamp.
func (h ConstHistogram) WithCreated(t time.Time) ConstHistogram {
	h.created = t
	return h
}

// WithTimestamp returns a copy carrying an explicit sample timestamp.
func (h ConstHistogram) WithTimestamp(t time.Time) ConstHistogram {
	h.ts = t
	h.hasTS = true
	return h
}

// MetricType implements openmetrics.Metric.
func (h ConstHistogram) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeHistogram }

// Empty implements openmetrics.Metric.
func (h ConstHistogram) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (h ConstHistogram) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeHistogram(h.buckets, nil, h.count, h.sum, h.created)
}

// Timestamp implements openmetrics.TimestampedMetric.
func (h ConstHistogram) Timestamp() (time.Time, bool) { return h.ts, h.hasTS }
