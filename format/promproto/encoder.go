// Package promproto implements the Prometheus protobuf exposition format:
// length-delimited io.prometheus.client.MetricFamily messages.
//
// The OpenMetrics protobuf schema has no published Go bindings; selecting it
// fails with ErrUnsupported rather than emitting a lookalike.
package promproto

import (
	"io"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/ygrebnov/errorc"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/ygrebnov/openmetrics"
)

type schema int

const (
	schemaPrometheus schema = iota
	schemaOpenMetrics
)

// Profile selects the protobuf exposition dialect.
type Profile struct {
	schema schema
}

// Prometheus is the classic Prometheus protobuf format, delimited
// io.prometheus.client.MetricFamily messages.
func Prometheus() Profile { return Profile{schema: schemaPrometheus} }

// OpenMetrics1 is the OpenMetrics protobuf format. Encoding it is not
// supported; see the package comment.
func OpenMetrics1() Profile { return Profile{schema: schemaOpenMetrics} }

// ContentType returns the HTTP Content-Type header value of the profile.
func (p Profile) ContentType() string {
	if p.schema == schemaOpenMetrics {
		return "application/openmetrics-protobuf; version=1.0.0"
	}
	return "application/vnd.google.protobuf; proto=io.prometheus.client.MetricFamily; encoding=delimited"
}

// Encode writes every non-empty metric family of the registry to w as
// length-delimited MetricFamily messages. Metric and label names pass through
// unescaped; the protobuf schema carries arbitrary UTF-8 strings.
//
// StateSet and Info metrics have no representation in the Prometheus schema
// and fail with ErrUnsupported.
func Encode(w io.Writer, reg *openmetrics.Registry, profile Profile) error {
	if profile.schema == schemaOpenMetrics {
		return errorc.With(openmetrics.ErrUnsupported,
			errorc.String("reason", "the OpenMetrics protobuf schema has no Go bindings"),
		)
	}
	return reg.Each(func(v openmetrics.FamilyView) error {
		if v.Metric.Empty() {
			return nil
		}
		mf, err := buildFamily(v)
		if err != nil {
			return err
		}
		if _, err := protodelim.MarshalTo(w, mf); err != nil {
			return errorc.With(openmetrics.ErrUnexpected, errorc.String("write", err.Error()))
		}
		return nil
	})
}

func familyType(ty openmetrics.MetricType) (dto.MetricType, error) {
	switch ty {
	case openmetrics.MetricTypeCounter:
		return dto.MetricType_COUNTER, nil
	case openmetrics.MetricTypeGauge:
		return dto.MetricType_GAUGE, nil
	case openmetrics.MetricTypeHistogram:
		return dto.MetricType_HISTOGRAM, nil
	case openmetrics.MetricTypeGaugeHistogram:
		return dto.MetricType_GAUGE_HISTOGRAM, nil
	case openmetrics.MetricTypeSummary:
		return dto.MetricType_SUMMARY, nil
	case openmetrics.MetricTypeUnknown:
		return dto.MetricType_UNTYPED, nil
	default:
		return 0, errorc.With(openmetrics.ErrUnsupported,
			errorc.String("type", ty.String()),
			errorc.String("reason", "metric type is not representable in the Prometheus protobuf schema"),
		)
	}
}

func buildFamily(v openmetrics.FamilyView) (*dto.MetricFamily, error) {
	ty, err := familyType(v.Metric.MetricType())
	if err != nil {
		return nil, errorc.With(err, errorc.String("metric", v.Metadata.Name()))
	}

	name := v.FullName()
	unit := v.Metadata.Unit().String()
	if unit != "" && !strings.HasSuffix(name, "_"+unit) {
		name += "_" + unit
	}

	c := &collector{}
	c.pushLabels(v.ConstLabels)
	if tm, ok := v.Metric.(openmetrics.TimestampedMetric); ok {
		if t, has := tm.Timestamp(); has {
			c.ts = proto.Int64(t.UnixMilli())
		}
	}
	if err := v.Metric.Encode(c); err != nil {
		return nil, err
	}

	mf := &dto.MetricFamily{
		Name:   proto.String(name),
		Type:   ty.Enum(),
		Metric: c.metrics,
	}
	if help := v.Metadata.Help(); help != "" {
		mf.Help = proto.String(help)
	}
	if unit != "" {
		mf.Unit = proto.String(unit)
	}
	return mf, nil
}

// collector implements openmetrics.MetricEncoder, accumulating dto.Metric
// messages for one family.
type collector struct {
	labels  []*dto.LabelPair
	ts      *int64
	metrics []*dto.Metric
}

func (c *collector) pushLabels(labels []openmetrics.Label) {
	for _, l := range labels {
		c.labels = append(c.labels, &dto.LabelPair{
			Name:  proto.String(l.Name),
			Value: proto.String(l.Value),
		})
	}
}

func (c *collector) add(m *dto.Metric) {
	if len(c.labels) > 0 {
		m.Label = append([]*dto.LabelPair(nil), c.labels...)
	}
	m.TimestampMs = c.ts
	c.metrics = append(c.metrics, m)
}

func exemplarProto(ex *openmetrics.Exemplar) *dto.Exemplar {
	if ex == nil {
		return nil
	}
	out := &dto.Exemplar{Value: proto.Float64(ex.Value)}
	for _, l := range ex.Labels {
		out.Label = append(out.Label, &dto.LabelPair{
			Name:  proto.String(l.Name),
			Value: proto.String(l.Value),
		})
	}
	if !ex.Timestamp.IsZero() {
		out.Timestamp = timestamppb.New(ex.Timestamp)
	}
	return out
}

func createdProto(created time.Time) *timestamppb.Timestamp {
	if created.IsZero() {
		return nil
	}
	return timestamppb.New(created)
}

func (c *collector) EncodeCounter(total openmetrics.Number, exemplar *openmetrics.Exemplar, created time.Time) error {
	c.add(&dto.Metric{Counter: &dto.Counter{
		Value:            proto.Float64(total.Float64()),
		Exemplar:         exemplarProto(exemplar),
		CreatedTimestamp: createdProto(created),
	}})
	return nil
}

func (c *collector) EncodeGauge(value openmetrics.Number) error {
	c.add(&dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(value.Float64())}})
	return nil
}

func (c *collector) EncodeUnknown(value openmetrics.Number) error {
	c.add(&dto.Metric{Untyped: &dto.Untyped{Value: proto.Float64(value.Float64())}})
	return nil
}

func histogramProto(buckets []openmetrics.Bucket, exemplars []*openmetrics.Exemplar, count uint64, sum float64) *dto.Histogram {
	h := &dto.Histogram{
		SampleCount: proto.Uint64(count),
		SampleSum:   proto.Float64(sum),
	}
	cumulative := uint64(0)
	for i, b := range buckets {
		cumulative += b.Count
		bucket := &dto.Bucket{
			CumulativeCount: proto.Uint64(cumulative),
			UpperBound:      proto.Float64(b.UpperBound),
		}
		if i < len(exemplars) {
			bucket.Exemplar = exemplarProto(exemplars[i])
		}
		h.Bucket = append(h.Bucket, bucket)
	}
	return h
}

func (c *collector) EncodeHistogram(buckets []openmetrics.Bucket, exemplars []*openmetrics.Exemplar, count uint64, sum float64, created time.Time) error {
	h := histogramProto(buckets, exemplars, count, sum)
	h.CreatedTimestamp = createdProto(created)
	c.add(&dto.Metric{Histogram: h})
	return nil
}

func (c *collector) EncodeGaugeHistogram(buckets []openmetrics.Bucket, gcount uint64, gsum float64) error {
	c.add(&dto.Metric{Histogram: histogramProto(buckets, nil, gcount, gsum)})
	return nil
}

func (c *collector) EncodeStateSet([]openmetrics.State) error {
	return errorc.With(openmetrics.ErrUnsupported,
		errorc.String("type", "stateset"),
		errorc.String("reason", "metric type is not representable in the Prometheus protobuf schema"),
	)
}

func (c *collector) EncodeInfo(openmetrics.LabelSet) error {
	return errorc.With(openmetrics.ErrUnsupported,
		errorc.String("type", "info"),
		errorc.String("reason", "metric type is not representable in the Prometheus protobuf schema"),
	)
}

func (c *collector) EncodeSummary(quantiles []openmetrics.Quantile, count uint64, sum float64, created time.Time) error {
	s := &dto.Summary{
		SampleCount:      proto.Uint64(count),
		SampleSum:        proto.Float64(sum),
		CreatedTimestamp: createdProto(created),
	}
	for _, q := range quantiles {
		s.Quantile = append(s.Quantile, &dto.Quantile{
			Quantile: proto.Float64(q.Quantile),
			Value:    proto.Float64(q.Value),
		})
	}
	c.add(&dto.Metric{Summary: s})
	return nil
}

func (c *collector) EncodeSeries(labels openmetrics.LabelSet, metric openmetrics.Metric) error {
	savedLabels := c.labels
	savedTS := c.ts
	c.labels = append([]*dto.LabelPair(nil), c.labels...)
	c.pushLabels(labels.AppendLabels(nil))
	if tm, ok := metric.(openmetrics.TimestampedMetric); ok {
		if t, has := tm.Timestamp(); has {
			c.ts = proto.Int64(t.UnixMilli())
		}
	}
	err := metric.Encode(c)
	c.labels = savedLabels
	c.ts = savedTS
	return err
}
