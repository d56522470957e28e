package metrics_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/metrics"
)

type httpMethod int

const (
	methodGet httpMethod = iota
	methodPost
	methodOther
	methodCount
)

func (m httpMethod) String() string {
	switch m {
	case methodGet:
		return "GET"
	case methodPost:
		return "POST"
	default:
		return "OTHER"
	}
}

func (m httpMethod) AppendLabels(dst []openmetrics.Label) []openmetrics.Label {
	return append(dst, openmetrics.Label{Name: "method", Value: m.String()})
}

func methodMapping() metrics.IndexMapping[httpMethod] {
	return metrics.IndexMapping[httpMethod]{
		Cardinality: int(methodCount),
		Index:       func(m httpMethod) int { return int(m) },
		FromIndex:   func(i int) httpMethod { return httpMethod(i) },
	}
}

func TestNewIndexedFamily_Validation(t *testing.T) {
	_, err := metrics.NewIndexedFamily(metrics.IndexMapping[httpMethod]{}, metrics.NewCounter)
	require.ErrorIs(t, err, openmetrics.ErrInvalid)

	m := methodMapping()
	m.FromIndex = nil
	_, err = metrics.NewIndexedFamily(m, metrics.NewCounter)
	require.ErrorIs(t, err, openmetrics.ErrInvalid)

	_, err = metrics.NewIndexedFamily[httpMethod, *metrics.Counter](methodMapping(), nil)
	require.ErrorIs(t, err, openmetrics.ErrInvalid)
}

func TestIndexedFamily_GetOrNew(t *testing.T) {
	f := metrics.MustNewIndexedFamily(methodMapping(), metrics.NewCounter)
	require.True(t, f.Empty())

	c1 := f.GetOrNew(methodGet)
	c2 := f.GetOrNew(methodGet)
	require.Same(t, c1, c2)
	require.Equal(t, 1, f.Len())

	_, ok := f.Get(methodPost)
	require.False(t, ok)
	got, ok := f.Get(methodGet)
	require.True(t, ok)
	require.Same(t, c1, got)
}

func TestIndexedFamily_ByIndex(t *testing.T) {
	f := metrics.MustNewIndexedFamily(methodMapping(), metrics.NewCounter)
	c := f.GetOrNewByIndex(int(methodPost))
	require.Same(t, c, f.GetOrNew(methodPost))

	got, ok := f.GetByIndex(int(methodPost))
	require.True(t, ok)
	require.Same(t, c, got)
	_, ok = f.GetByIndex(int(methodGet))
	require.False(t, ok)
}

func TestIndexedFamily_TouchedSlotExportsZero(t *testing.T) {
	f := metrics.MustNewIndexedFamily(methodMapping(), metrics.NewCounter)
	f.GetOrNew(methodPost) // touched, never incremented

	enc := &captureEncoder{}
	require.NoError(t, f.Encode(enc))
	require.Len(t, enc.series, 1)
	require.Equal(t, "POST", enc.series[0].labels[0].Value)
	require.Equal(t, uint64(0), enc.counters[0].total.Uint64())
}

func TestIndexedFamily_EncodeTouchedSlotsOnly(t *testing.T) {
	f := metrics.MustNewIndexedFamily(methodMapping(), metrics.NewCounter)
	f.GetOrNew(methodPost).Add(3)
	f.GetOrNew(methodGet).Add(1)

	enc := &captureEncoder{}
	require.NoError(t, f.Encode(enc))
	// slot order, not touch order
	require.Len(t, enc.series, 2)
	require.Equal(t, "GET", enc.series[0].labels[0].Value)
	require.Equal(t, "POST", enc.series[1].labels[0].Value)
	require.Equal(t, uint64(1), enc.counters[0].total.Uint64())
	require.Equal(t, uint64(3), enc.counters[1].total.Uint64())
}

func TestIndexedFamily_Concurrent(t *testing.T) {
	f := metrics.MustNewIndexedFamily(methodMapping(), metrics.NewCounter)
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 500; n++ {
				f.GetOrNew(methodGet).Inc()
			}
		}()
	}
	wg.Wait()
	c, ok := f.Get(methodGet)
	require.True(t, ok)
	require.Equal(t, uint64(16000), c.Total())
}

func TestCombineIndex_RoundTrip(t *testing.T) {
	cards := []int{3, 4, 2}
	require.Equal(t, 24, metrics.CombineCardinality(cards...))

	for a := 0; a < 3; a++ {
		for b := 0; b < 4; b++ {
			for c := 0; c < 2; c++ {
				combined := metrics.CombineIndex(cards, a, b, c)
				require.GreaterOrEqual(t, combined, 0)
				require.Less(t, combined, 24)
				require.Equal(t, []int{a, b, c}, metrics.SplitIndex(cards, combined))
			}
		}
	}
}
