package metrics

import (
	"sort"
	"sync"

	"github.com/ygrebnov/openmetrics"
)

// ComparableLabelSet constrains Family keys: a label set type that is also
// comparable, so it can identify a series in a map.
type ComparableLabelSet interface {
	comparable
	openmetrics.LabelSet
}

// Family maps label set values to lazily created metric instances, one per
// distinct label value. Lookups of existing series take a shared lock only;
// creating a missing series builds a candidate outside the lock and inserts it
// under an exclusive lock, discarding the candidate when another goroutine won
// the race. At most one instance per label value is ever observable.
type Family[LS ComparableLabelSet, M openmetrics.Metric] struct {
	mu        sync.RWMutex
	series    map[LS]M
	newMetric func(LS) M
	mtype     openmetrics.MetricType
}

// NewFamily returns a family creating series with newMetric. The constructor
// is invoked once immediately to determine the family's metric type; the probe
// instance is discarded. Constructors must be free of observable side effects,
// since a racing creation may build an instance that is then discarded.
func NewFamily[LS ComparableLabelSet, M openmetrics.Metric](newMetric func() M) *Family[LS, M] {
	return NewFamilyWithLabels[LS](func(LS) M { return newMetric() })
}

// NewFamilyWithLabels is NewFamily with a label-aware constructor: the factory
// receives the label value of the series being created, so instances can be
// parameterized by label content. The probe invocation uses the zero label
// value.
func NewFamilyWithLabels[LS ComparableLabelSet, M openmetrics.Metric](newMetric func(LS) M) *Family[LS, M] {
	var zero LS
	return &Family[LS, M]{
		series:    make(map[LS]M),
		newMetric: newMetric,
		mtype:     newMetric(zero).MetricType(),
	}
}

// Get returns the series for labels when it exists.
func (f *Family[LS, M]) Get(labels LS) (M, bool) {
	f.mu.RLock()
	m, ok := f.series[labels]
	f.mu.RUnlock()
	return m, ok
}

// GetOrNew returns the series for labels, creating it on first use.
func (f *Family[LS, M]) GetOrNew(labels LS) M {
	f.mu.RLock()
	m, ok := f.series[labels]
	f.mu.RUnlock()
	if ok {
		return m
	}

	candidate := f.newMetric(labels)
	f.mu.Lock()
	if m, ok := f.series[labels]; ok {
		f.mu.Unlock()
		return m
	}
	f.series[labels] = candidate
	f.mu.Unlock()
	return candidate
}

// Remove deletes the series for labels, reporting whether it existed. The
// removed instance stops being exposed but remains valid for holders of a
// direct reference.
func (f *Family[LS, M]) Remove(labels LS) bool {
	f.mu.Lock()
	_, ok := f.series[labels]
	delete(f.series, labels)
	f.mu.Unlock()
	return ok
}

// Clear removes all series.
func (f *Family[LS, M]) Clear() {
	f.mu.Lock()
	f.series = make(map[LS]M)
	f.mu.Unlock()
}

// Len returns the number of active series.
func (f *Family[LS, M]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.series)
}

// MetricType implements openmetrics.Metric.
func (f *Family[LS, M]) MetricType() openmetrics.MetricType { return f.mtype }

// Empty implements openmetrics.Metric.
func (f *Family[LS, M]) Empty() bool { return f.Len() == 0 }

// LabelNames implements openmetrics.LabelSchema when the label set type
// declares its names; otherwise it returns nil and the registry skips schema
// validation.
func (f *Family[LS, M]) LabelNames() []string {
	var zero LS
	if s, ok := any(zero).(openmetrics.LabelSchema); ok {
		return s.LabelNames()
	}
	return nil
}

// Encode implements openmetrics.Metric. Series are encoded in a stable order,
// sorted by their rendered label pairs, from a snapshot taken under a shared
// lock; series created after the snapshot appear on the next encode.
func (f *Family[LS, M]) Encode(enc openmetrics.MetricEncoder) error {
	type seriesPair struct {
		labels LS
		metric M
		sortBy string
	}

	f.mu.RLock()
	pairs := make([]seriesPair, 0, len(f.series))
	for labels, metric := range f.series {
		pairs = append(pairs, seriesPair{labels: labels, metric: metric})
	}
	f.mu.RUnlock()

	var scratch []openmetrics.Label
	for i := range pairs {
		scratch = pairs[i].labels.AppendLabels(scratch[:0])
		key := make([]byte, 0, 32)
		for _, l := range scratch {
			key = append(key, l.Name...)
			key = append(key, 0xff)
			key = append(key, l.Value...)
			key = append(key, 0xff)
		}
		pairs[i].sortBy = string(key)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].sortBy < pairs[j].sortBy })

	for _, p := range pairs {
		if err := enc.EncodeSeries(p.labels, p.metric); err != nil {
			return err
		}
	}
	return nil
}
