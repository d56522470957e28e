package openmetrics

import "time"

// MetricType identifies the OpenMetrics type of a metric family.
type MetricType int

// Supported metric types, in the order defined by the OpenMetrics data model.
const (
	MetricTypeUnknown MetricType = iota
	MetricTypeGauge
	MetricTypeCounter
	MetricTypeStateSet
	MetricTypeInfo
	MetricTypeHistogram
	MetricTypeGaugeHistogram
	MetricTypeSummary
)

// String returns the OpenMetrics spelling of the type.
func (t MetricType) String() string {
	switch t {
	case MetricTypeGauge:
		return "gauge"
	case MetricTypeCounter:
		return "counter"
	case MetricTypeStateSet:
		return "stateset"
	case MetricTypeInfo:
		return "info"
	case MetricTypeHistogram:
		return "histogram"
	case MetricTypeGaugeHistogram:
		return "gaugehistogram"
	case MetricTypeSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// Bucket is one histogram bucket: an inclusive upper bound and the number of
// observations that fell into this bucket (per-bucket, not cumulative; the text
// encoder accumulates counts in bound order).
type Bucket struct {
	UpperBound float64
	Count      uint64
}

// BucketLabel is the reserved label name carrying a bucket's upper bound.
const BucketLabel = "le"

// State is one member of a StateSet sample: the state name and whether it is
// the currently active state.
type State struct {
	Name    string
	Enabled bool
}

// Quantile is a single quantile measurement of a summary: the quantile point
// (0..1 inclusive) and the value of the distribution at that point.
type Quantile struct {
	Quantile float64
	Value    float64
}

// QuantileLabel is the reserved label name carrying a summary quantile point.
const QuantileLabel = "quantile"

// Exemplar is an optional trace reference attached to a sample.
type Exemplar struct {
	Labels    Labels
	Value     float64
	Timestamp time.Time
}

// Metric is the encoding contract implemented by every metric primitive and
// family. Encode visits the metric's current state through a MetricEncoder;
// the same Metric works with every encoder backend.
type Metric interface {
	// MetricType reports the OpenMetrics type of the metric.
	MetricType() MetricType

	// Empty reports whether the metric currently has no series to expose.
	// Encoders skip empty metrics entirely, including their metadata lines.
	Empty() bool

	// Encode writes the metric's current state into enc.
	Encode(enc MetricEncoder) error
}

// TimestampedMetric is optionally implemented by metrics that carry an explicit
// sample timestamp (typically constant metrics mirroring external state).
type TimestampedMetric interface {
	Metric

	// Timestamp returns the sample timestamp and whether one is set.
	Timestamp() (time.Time, bool)
}

// MetricEncoder receives the state of a single metric (or of one series of a
// family via EncodeSeries). Implementations exist per exposition format; metric
// types call exactly one method per series.
//
// A zero time.Time passed as created means "no creation timestamp".
type MetricEncoder interface {
	EncodeCounter(total Number, exemplar *Exemplar, created time.Time) error
	EncodeGauge(value Number) error
	EncodeUnknown(value Number) error
	EncodeHistogram(buckets []Bucket, exemplars []*Exemplar, count uint64, sum float64, created time.Time) error
	EncodeGaugeHistogram(buckets []Bucket, gcount uint64, gsum float64) error
	EncodeStateSet(states []State) error
	EncodeInfo(labels LabelSet) error
	EncodeSummary(quantiles []Quantile, count uint64, sum float64, created time.Time) error

	// EncodeSeries encodes one (label set, metric) pair of a family. The
	// returned encoder context carries the series labels; families call this
	// once per active label combination.
	EncodeSeries(labels LabelSet, metric Metric) error
}
