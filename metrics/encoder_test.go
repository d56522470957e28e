package metrics_test

import (
	"time"

	"github.com/ygrebnov/openmetrics"
)

// captureEncoder records every encoder callback so tests can assert on the
// exact state a metric exposes.
type captureEncoder struct {
	counters []capturedCounter
	gauges   []openmetrics.Number
	unknowns []openmetrics.Number

	histograms      []capturedHistogram
	gaugeHistograms []capturedGaugeHistogram

	stateSets [][]openmetrics.State
	infos     []openmetrics.LabelSet
	summaries []capturedSummary

	series []capturedSeries
}

type capturedCounter struct {
	total    openmetrics.Number
	exemplar *openmetrics.Exemplar
	created  time.Time
}

type capturedHistogram struct {
	buckets   []openmetrics.Bucket
	exemplars []*openmetrics.Exemplar
	count     uint64
	sum       float64
	created   time.Time
}

type capturedGaugeHistogram struct {
	buckets []openmetrics.Bucket
	gcount  uint64
	gsum    float64
}

type capturedSummary struct {
	quantiles []openmetrics.Quantile
	count     uint64
	sum       float64
	created   time.Time
}

type capturedSeries struct {
	labels []openmetrics.Label
	metric openmetrics.Metric
}

func (c *captureEncoder) EncodeCounter(total openmetrics.Number, exemplar *openmetrics.Exemplar, created time.Time) error {
	c.counters = append(c.counters, capturedCounter{total: total, exemplar: exemplar, created: created})
	return nil
}

func (c *captureEncoder) EncodeGauge(value openmetrics.Number) error {
	c.gauges = append(c.gauges, value)
	return nil
}

func (c *captureEncoder) EncodeUnknown(value openmetrics.Number) error {
	c.unknowns = append(c.unknowns, value)
	return nil
}

func (c *captureEncoder) EncodeHistogram(buckets []openmetrics.Bucket, exemplars []*openmetrics.Exemplar, count uint64, sum float64, created time.Time) error {
	c.histograms = append(c.histograms, capturedHistogram{
		buckets:   buckets,
		exemplars: exemplars,
		count:     count,
		sum:       sum,
		created:   created,
	})
	return nil
}

func (c *captureEncoder) EncodeGaugeHistogram(buckets []openmetrics.Bucket, gcount uint64, gsum float64) error {
	c.gaugeHistograms = append(c.gaugeHistograms, capturedGaugeHistogram{
		buckets: buckets,
		gcount:  gcount,
		gsum:    gsum,
	})
	return nil
}

func (c *captureEncoder) EncodeStateSet(states []openmetrics.State) error {
	c.stateSets = append(c.stateSets, states)
	return nil
}

func (c *captureEncoder) EncodeInfo(labels openmetrics.LabelSet) error {
	c.infos = append(c.infos, labels)
	return nil
}

func (c *captureEncoder) EncodeSummary(quantiles []openmetrics.Quantile, count uint64, sum float64, created time.Time) error {
	c.summaries = append(c.summaries, capturedSummary{
		quantiles: quantiles,
		count:     count,
		sum:       sum,
		created:   created,
	})
	return nil
}

func (c *captureEncoder) EncodeSeries(labels openmetrics.LabelSet, metric openmetrics.Metric) error {
	c.series = append(c.series, capturedSeries{
		labels: labels.AppendLabels(nil),
		metric: metric,
	})
	return metric.Encode(c)
}
