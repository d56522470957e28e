package metrics_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/metrics"
)

type requestLabels struct {
	Method string
	Status string
}

func (l requestLabels) AppendLabels(dst []openmetrics.Label) []openmetrics.Label {
	return append(dst,
		openmetrics.Label{Name: "method", Value: l.Method},
		openmetrics.Label{Name: "status", Value: l.Status},
	)
}

func (requestLabels) LabelNames() []string { return []string{"method", "status"} }

func TestFamily_GetOrNew(t *testing.T) {
	f := metrics.NewFamily[requestLabels](metrics.NewCounter)
	require.True(t, f.Empty())

	get := requestLabels{Method: "GET", Status: "200"}
	c1 := f.GetOrNew(get)
	c2 := f.GetOrNew(get)
	require.Same(t, c1, c2)
	require.Equal(t, 1, f.Len())

	_, ok := f.Get(requestLabels{Method: "POST", Status: "200"})
	require.False(t, ok)

	got, ok := f.Get(get)
	require.True(t, ok)
	require.Same(t, c1, got)
	require.Equal(t, openmetrics.MetricTypeCounter, f.MetricType())
	require.Equal(t, []string{"method", "status"}, f.LabelNames())
}

func TestFamily_ConcurrentGetOrNew(t *testing.T) {
	f := metrics.NewFamily[requestLabels](metrics.NewCounter)
	labels := requestLabels{Method: "GET", Status: "200"}

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 500; n++ {
				f.GetOrNew(labels).Inc()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, f.Len())
	c, ok := f.Get(labels)
	require.True(t, ok)
	require.Equal(t, uint64(16000), c.Total())
}

func TestFamily_LabelAwareConstructor(t *testing.T) {
	f := metrics.NewFamilyWithLabels(func(l requestLabels) *metrics.Gauge {
		g := metrics.NewGauge()
		if l.Method == "POST" {
			g.Set(100)
		}
		return g
	})
	require.Equal(t, int64(0), f.GetOrNew(requestLabels{Method: "GET"}).Get())
	require.Equal(t, int64(100), f.GetOrNew(requestLabels{Method: "POST"}).Get())
}

func TestFamily_RemoveClear(t *testing.T) {
	f := metrics.NewFamily[requestLabels](metrics.NewCounter)
	a := requestLabels{Method: "GET", Status: "200"}
	b := requestLabels{Method: "GET", Status: "500"}
	f.GetOrNew(a)
	f.GetOrNew(b)

	require.True(t, f.Remove(a))
	require.False(t, f.Remove(a))
	require.Equal(t, 1, f.Len())

	f.Clear()
	require.True(t, f.Empty())
}

func TestFamily_EncodeSortedSeries(t *testing.T) {
	f := metrics.NewFamily[requestLabels](metrics.NewCounter)
	f.GetOrNew(requestLabels{Method: "POST", Status: "500"}).Add(5)
	f.GetOrNew(requestLabels{Method: "GET", Status: "200"}).Add(2)

	enc := &captureEncoder{}
	require.NoError(t, f.Encode(enc))
	require.Len(t, enc.series, 2)
	require.Equal(t, "GET", enc.series[0].labels[0].Value)
	require.Equal(t, "POST", enc.series[1].labels[0].Value)
	require.Len(t, enc.counters, 2)
	require.Equal(t, uint64(2), enc.counters[0].total.Uint64())
	require.Equal(t, uint64(5), enc.counters[1].total.Uint64())
}

func TestFamily_HistogramSeries(t *testing.T) {
	f := metrics.NewFamily[requestLabels](func() *metrics.Histogram {
		return metrics.NewHistogram(0.1, 1)
	})
	f.GetOrNew(requestLabels{Method: "GET", Status: "200"}).Observe(0.05)

	require.Equal(t, openmetrics.MetricTypeHistogram, f.MetricType())

	enc := &captureEncoder{}
	require.NoError(t, f.Encode(enc))
	require.Len(t, enc.histograms, 1)
	require.Equal(t, uint64(1), enc.histograms[0].buckets[0].Count)
}
