package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/openmetrics"
)

// ConstSummary is an immutable summary sample: pre-computed quantiles plus
// count and sum, mirroring summaries maintained by an external system. The
// library does not maintain streaming quantile estimators itself; use a
// Histogram for in-process distributions.
type ConstSummary struct {
	quantiles []openmetrics.Quantile
	count     uint64
	sum       float64
	created   time.Time
	ts        time.Time
	hasTS     bool
}

// NewConstSummary builds a constant summary sample. Quantile points must lie
// in [0, 1] and must not repeat; they are sorted ascending for exposition.
func NewConstSummary(count uint64, sum float64, quantiles []openmetrics.Quantile) (ConstSummary, error) {
	copied := make([]openmetrics.Quantile, len(quantiles))
	copy(copied, quantiles)
	sort.Slice(copied, func(i, j int) bool { return copied[i].Quantile < copied[j].Quantile })
	for i, q := range copied {
		if math.IsNaN(q.Quantile) || q.Quantile < 0 || q.Quantile > 1 {
			return ConstSummary{}, errorc.With(openmetrics.ErrInvalid,
				errorc.String("reason", "summary quantile point must lie in [0, 1]"),
			)
		}
		if i > 0 && q.Quantile == copied[i-1].Quantile {
			return ConstSummary{}, errorc.With(openmetrics.ErrDuplicated,
				errorc.String("reason", "summary quantile point declared twice"),
			)
		}
	}
	return ConstSummary{quantiles: copied, count: count, sum: sum}, nil
}

// WithCreated returns a copy carrying the given creation timestamp.
func (s ConstSummary) WithCreated(t time.Time) ConstSummary {
	s.created = t
	return s
}

// WithTimestamp returns a copy carrying an explicit sample timestamp.
func (s ConstSummary) WithTimestamp(t time.Time) ConstSummary {
	s.ts = t
	s.hasTS = true
	return s
}

// MetricType implements openmetrics.Metric.
func (s ConstSummary) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeSummary }

// Empty implements openmetrics.Metric.
func (s ConstSummary) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (s ConstSummary) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeSummary(s.quantiles, s.count, s.sum, s.created)
}

// Timestamp implements openmetrics.TimestampedMetric.
func (s ConstSummary) Timestamp() (time.Time, bool) { return s.ts, s.hasTS }
