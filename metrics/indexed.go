package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/openmetrics"
)

// IndexMapping defines a dense bijection between a label set type and the
// integers [0, Cardinality). Index and FromIndex must be inverses of each
// other over that range.
type IndexMapping[LS openmetrics.LabelSet] struct {
	// Cardinality is the number of distinct label values, and the slot count
	// of an IndexedFamily using this mapping.
	Cardinality int

	// Index maps a label value to its slot in [0, Cardinality).
	Index func(LS) int

	// FromIndex reconstructs the label value of a slot.
	FromIndex func(int) LS
}

// CombineCardinality returns the product of the given per-dimension
// cardinalities, the cardinality of their mixed-radix combination.
func CombineCardinality(cards ...int) int {
	product := 1
	for _, c := range cards {
		product *= c
	}
	return product
}

// CombineIndex packs per-dimension indexes into a single mixed-radix index.
// The first dimension varies slowest. len(indexes) must equal len(cards).
func CombineIndex(cards []int, indexes ...int) int {
	combined := 0
	for i, idx := range indexes {
		combined = combined*cards[i] + idx
	}
	return combined
}

// SplitIndex unpacks a mixed-radix index produced by CombineIndex back into
// per-dimension indexes.
func SplitIndex(cards []int, combined int) []int {
	indexes := make([]int, len(cards))
	for i := len(cards) - 1; i >= 0; i-- {
		indexes[i] = combined % cards[i]
		combined /= cards[i]
	}
	return indexes
}

type indexedSlot[M openmetrics.Metric] struct {
	once   sync.Once
	ready  atomic.Bool
	metric M
}

// IndexedFamily maps a fixed-cardinality label schema to a pre-sized slot
// array. Series creation runs once per slot; after that, lookups are a slice
// index plus an atomic load, with no locking or hashing. Only slots that have
// been touched are exposed by Encode.
type IndexedFamily[LS openmetrics.LabelSet, M openmetrics.Metric] struct {
	mapping   IndexMapping[LS]
	slots     []indexedSlot[M]
	newMetric func() M
	mtype     openmetrics.MetricType
}

// NewIndexedFamily returns an indexed family over the given mapping, creating
// series with newMetric. The constructor is invoked once immediately to
// determine the family's metric type.
func NewIndexedFamily[LS openmetrics.LabelSet, M openmetrics.Metric](
	mapping IndexMapping[LS],
	newMetric func() M,
) (*IndexedFamily[LS, M], error) {
	if mapping.Cardinality <= 0 {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "index mapping cardinality must be positive"),
		)
	}
	if mapping.Index == nil || mapping.FromIndex == nil {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "index mapping must define Index and FromIndex"),
		)
	}
	if newMetric == nil {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "metric constructor must not be nil"),
		)
	}
	return &IndexedFamily[LS, M]{
		mapping:   mapping,
		slots:     make([]indexedSlot[M], mapping.Cardinality),
		newMetric: newMetric,
		mtype:     newMetric().MetricType(),
	}, nil
}

// MustNewIndexedFamily is NewIndexedFamily that panics on error.
func MustNewIndexedFamily[LS openmetrics.LabelSet, M openmetrics.Metric](
	mapping IndexMapping[LS],
	newMetric func() M,
) *IndexedFamily[LS, M] {
	f, err := NewIndexedFamily(mapping, newMetric)
	if err != nil {
		panic(err)
	}
	return f
}

// GetOrNew returns the series for labels, creating it on the slot's first use.
// It panics when the mapping produces an index outside [0, Cardinality); that
// is a broken mapping, not a runtime condition.
func (f *IndexedFamily[LS, M]) GetOrNew(labels LS) M {
	return f.GetOrNewByIndex(f.mapping.Index(labels))
}

// GetOrNewByIndex is GetOrNew addressing the slot directly. Unlike Family
// there are no discarded race losers: slot initialization is exclusive, the
// first caller constructs and everyone sees that instance.
func (f *IndexedFamily[LS, M]) GetOrNewByIndex(i int) M {
	slot := &f.slots[i]
	slot.once.Do(func() {
		slot.metric = f.newMetric()
		slot.ready.Store(true)
	})
	return slot.metric
}

// Get returns the series for labels when its slot has been initialized.
func (f *IndexedFamily[LS, M]) Get(labels LS) (M, bool) {
	return f.GetByIndex(f.mapping.Index(labels))
}

// GetByIndex is Get addressing the slot directly.
func (f *IndexedFamily[LS, M]) GetByIndex(i int) (M, bool) {
	slot := &f.slots[i]
	if !slot.ready.Load() {
		var zero M
		return zero, false
	}
	return slot.metric, true
}

// Len returns the number of initialized slots.
func (f *IndexedFamily[LS, M]) Len() int {
	n := 0
	for i := range f.slots {
		if f.slots[i].ready.Load() {
			n++
		}
	}
	return n
}

// MetricType implements openmetrics.Metric.
func (f *IndexedFamily[LS, M]) MetricType() openmetrics.MetricType { return f.mtype }

// Empty implements openmetrics.Metric.
func (f *IndexedFamily[LS, M]) Empty() bool { return f.Len() == 0 }

// LabelNames implements openmetrics.LabelSchema when the label set type
// declares its names.
func (f *IndexedFamily[LS, M]) LabelNames() []string {
	var zero LS
	if s, ok := any(zero).(openmetrics.LabelSchema); ok {
		return s.LabelNames()
	}
	return nil
}

// Encode implements openmetrics.Metric. Slots are visited in index order;
// untouched slots are skipped.
func (f *IndexedFamily[LS, M]) Encode(enc openmetrics.MetricEncoder) error {
	for i := range f.slots {
		slot := &f.slots[i]
		if !slot.ready.Load() {
			continue
		}
		if err := enc.EncodeSeries(f.mapping.FromIndex(i), slot.metric); err != nil {
			return err
		}
	}
	return nil
}
