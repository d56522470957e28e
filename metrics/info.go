package metrics

import (
	"github.com/ygrebnov/openmetrics"
)

// Info exposes immutable build or target metadata as a constant-1 sample whose
// labels carry the information, such as version and commit of the running
// binary.
type Info struct {
	labels openmetrics.Labels
}

// NewInfo returns an info metric carrying the given labels.
func NewInfo(labels ...openmetrics.Label) Info {
	copied := make(openmetrics.Labels, len(labels))
	copy(copied, labels)
	return Info{labels: copied}
}

// MetricType implements openmetrics.Metric.
func (i Info) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeInfo }

// Empty implements openmetrics.Metric.
func (i Info) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (i Info) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeInfo(i.labels)
}

// LabelNames implements openmetrics.LabelSchema so the registry can validate
// the info labels at registration time.
func (i Info) LabelNames() []string {
	names := make([]string, len(i.labels))
	for j, l := range i.labels {
		names[j] = l.Name
	}
	return names
}
