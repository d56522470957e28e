package text_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/format/text"
	"github.com/ygrebnov/openmetrics/metrics"
)

type methodLabels struct {
	Method string
}

func (l methodLabels) AppendLabels(dst []openmetrics.Label) []openmetrics.Label {
	return append(dst, openmetrics.Label{Name: "method", Value: l.Method})
}

func (methodLabels) LabelNames() []string { return []string{"method"} }

func newRegistry(t *testing.T, opts ...openmetrics.Option) *openmetrics.Registry {
	t.Helper()
	reg, err := openmetrics.NewRegistry(opts...)
	require.NoError(t, err)
	return reg
}

func encode(t *testing.T, reg *openmetrics.Registry, p text.Profile) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, text.Encode(&buf, reg, p))
	return buf.String()
}

func TestEncode_CounterOpenMetrics(t *testing.T) {
	reg := newRegistry(t)
	c := metrics.NewCounter()
	c.Add(100)
	require.NoError(t, reg.Register("my_counter", "My counter help", c))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE my_counter counter\n" +
		"# HELP my_counter My counter help.\n" +
		"my_counter_total 100\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_CounterPrometheus(t *testing.T) {
	reg := newRegistry(t)
	c := metrics.NewCounter()
	c.Add(100)
	require.NoError(t, reg.Register("my_counter", "My counter help", c))

	got := encode(t, reg, text.Prometheus004())
	want := "# TYPE my_counter counter\n" +
		"# HELP my_counter My counter help.\n" +
		"my_counter 100\n"
	require.Equal(t, want, got)
}

func TestEncode_EmptyFamilySkipped(t *testing.T) {
	reg := newRegistry(t)
	f := metrics.NewFamily[methodLabels](metrics.NewCounter)
	require.NoError(t, reg.Register("empty_family", "Never touched", f))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	require.Equal(t, "# EOF\n", got)
}

func TestEncode_UnitSuffixAndLine(t *testing.T) {
	reg := newRegistry(t)
	g := metrics.NewFloatGauge()
	g.Set(0.5)
	require.NoError(t, reg.RegisterWithUnit("request_duration", "Request duration", openmetrics.UnitSeconds, g))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE request_duration_seconds gauge\n" +
		"# UNIT request_duration_seconds seconds\n" +
		"# HELP request_duration_seconds Request duration.\n" +
		"request_duration_seconds 0.5\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_NamespaceConstLabelsAndSeries(t *testing.T) {
	reg := newRegistry(t,
		openmetrics.WithNamespace("app"),
		openmetrics.WithConstLabels(openmetrics.Label{Name: "region", Value: "eu"}),
	)
	f := metrics.NewFamily[methodLabels](metrics.NewCounter)
	f.GetOrNew(methodLabels{Method: "GET"}).Add(2)
	f.GetOrNew(methodLabels{Method: "POST"}).Add(5)
	require.NoError(t, reg.Register("http_requests", "HTTP requests", f))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE app_http_requests counter\n" +
		"# HELP app_http_requests HTTP requests.\n" +
		"app_http_requests_total{region=\"eu\",method=\"GET\"} 2\n" +
		"app_http_requests_total{region=\"eu\",method=\"POST\"} 5\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_Subsystem(t *testing.T) {
	reg := newRegistry(t, openmetrics.WithNamespace("app"))
	sub, err := reg.Subsystem("db", openmetrics.Label{Name: "engine", Value: "pg"})
	require.NoError(t, err)

	c := metrics.NewCounter()
	c.Inc()
	require.NoError(t, sub.Register("queries", "Queries", c))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE app_db_queries counter\n" +
		"# HELP app_db_queries Queries.\n" +
		"app_db_queries_total{engine=\"pg\"} 1\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_Histogram(t *testing.T) {
	reg := newRegistry(t)
	h := metrics.NewHistogram(1, 2)
	h.Observe(0.5)
	h.Observe(1)
	h.Observe(1.5)
	h.Observe(9)
	require.NoError(t, reg.Register("lat", "Latency", h))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE lat histogram\n" +
		"# HELP lat Latency.\n" +
		"lat_bucket{le=\"1\"} 2\n" +
		"lat_bucket{le=\"2\"} 3\n" +
		"lat_bucket{le=\"+Inf\"} 4\n" +
		"lat_count 4\n" +
		"lat_sum 12\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_GaugeHistogram(t *testing.T) {
	reg := newRegistry(t)
	h := metrics.NewGaugeHistogram(0, 10)
	h.Observe(-5)
	h.Observe(5)
	require.NoError(t, reg.Register("queue_size", "Queue sizes", h))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE queue_size gaugehistogram\n" +
		"# HELP queue_size Queue sizes.\n" +
		"queue_size_bucket{le=\"0\"} 1\n" +
		"queue_size_bucket{le=\"10\"} 2\n" +
		"queue_size_bucket{le=\"+Inf\"} 2\n" +
		"queue_size_gcount 2\n" +
		"queue_size_gsum 0\n" +
		"# EOF\n"
	require.Equal(t, want, got)

	err := func() error {
		var buf bytes.Buffer
		return text.Encode(&buf, reg, text.Prometheus004())
	}()
	require.ErrorIs(t, err, openmetrics.ErrUnsupported)
}

func TestEncode_StateSet(t *testing.T) {
	reg := newRegistry(t)
	s := metrics.MustNewStateSet("starting", "running")
	require.NoError(t, s.Set("running"))
	require.NoError(t, reg.Register("svc_state", "Service state", s))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE svc_state stateset\n" +
		"# HELP svc_state Service state.\n" +
		"svc_state{svc_state=\"starting\"} 0\n" +
		"svc_state{svc_state=\"running\"} 1\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_Info(t *testing.T) {
	reg := newRegistry(t)
	i := metrics.NewInfo(openmetrics.Label{Name: "version", Value: "1.2.3"})
	require.NoError(t, reg.Register("build", "Build information", i))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE build info\n" +
		"# HELP build Build information.\n" +
		"build_info{version=\"1.2.3\"} 1\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_Summary(t *testing.T) {
	reg := newRegistry(t)
	s, err := metrics.NewConstSummary(10, 25.5, []openmetrics.Quantile{
		{Quantile: 0.5, Value: 2},
		{Quantile: 0.99, Value: 8},
	})
	require.NoError(t, err)
	require.NoError(t, reg.Register("rpc", "RPC durations", s))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE rpc summary\n" +
		"# HELP rpc RPC durations.\n" +
		"rpc{quantile=\"0.5\"} 2\n" +
		"rpc{quantile=\"0.99\"} 8\n" +
		"rpc_count 10\n" +
		"rpc_sum 25.5\n" +
		"# EOF\n"
	require.Equal(t, want, got)

	var buf bytes.Buffer
	require.ErrorIs(t, text.Encode(&buf, reg, text.Prometheus004()), openmetrics.ErrUnsupported)
}

func TestEncode_UnknownPrometheusCompat(t *testing.T) {
	reg := newRegistry(t)
	u := metrics.NewUnknown()
	u.Set(7)
	require.NoError(t, reg.Register("foreign", "Foreign value", u))

	got := encode(t, reg, text.Prometheus004())
	require.Contains(t, got, "# TYPE foreign untyped\n")
	require.Contains(t, got, "foreign 7\n")

	got = encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	require.Contains(t, got, "# TYPE foreign unknown\n")
}

func TestEncode_Timestamps(t *testing.T) {
	reg := newRegistry(t)
	g := metrics.NewConstGauge(5).WithTimestamp(time.UnixMilli(1234567890123))
	require.NoError(t, reg.Register("snapshot", "", g))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	require.Contains(t, got, "snapshot 5 1234567890.123\n")

	got = encode(t, reg, text.Prometheus004())
	require.Contains(t, got, "snapshot 5 1234567890123\n")
}

func TestEncode_CreatedSeries(t *testing.T) {
	reg := newRegistry(t)
	c := metrics.NewConstCounter(7).WithCreated(time.UnixMilli(1600000000500))
	require.NoError(t, reg.Register("jobs", "Jobs", c))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8).WithCreatedSeries(true))
	want := "# TYPE jobs counter\n" +
		"# HELP jobs Jobs.\n" +
		"jobs_total 7\n" +
		"jobs_created 1600000000.500\n" +
		"# EOF\n"
	require.Equal(t, want, got)

	// off by default
	got = encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	require.NotContains(t, got, "jobs_created")

	// the Prometheus grammar predates _created
	got = encode(t, reg, text.Prometheus004().WithCreatedSeries(true))
	require.NotContains(t, got, "jobs_created")
}

func TestEncode_Exemplar(t *testing.T) {
	reg := newRegistry(t)
	c := metrics.NewCounter()
	c.Add(5)
	c.SetExemplar(openmetrics.Exemplar{
		Labels:    openmetrics.Labels{{Name: "trace_id", Value: "abc"}},
		Value:     1,
		Timestamp: time.UnixMilli(1000042),
	})
	require.NoError(t, reg.Register("hits", "Hits", c))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	require.Contains(t, got, "hits_total 5 # {trace_id=\"abc\"} 1 1000.042\n")

	// exemplars are an OpenMetrics feature
	got = encode(t, reg, text.Prometheus004())
	require.Contains(t, got, "hits 5\n")
	require.NotContains(t, got, "trace_id")
}

func TestEncode_UTF8QuotedSyntax(t *testing.T) {
	reg := newRegistry(t, openmetrics.WithNameRule(openmetrics.NameRuleUTF8))
	c := metrics.NewCounter()
	c.Add(3)
	require.NoError(t, reg.Register("http.requests", "Requests", c))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	want := "# TYPE \"http.requests\" counter\n" +
		"# HELP \"http.requests\" Requests.\n" +
		"{\"http.requests_total\"} 3\n" +
		"# EOF\n"
	require.Equal(t, want, got)
}

func TestEncode_UTF8EscapedSchemes(t *testing.T) {
	reg := newRegistry(t, openmetrics.WithNameRule(openmetrics.NameRuleUTF8))
	c := metrics.NewCounter()
	c.Add(3)
	require.NoError(t, reg.Register("http.requests", "", c))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeUnderscores))
	require.Contains(t, got, "http_requests_total 3\n")

	got = encode(t, reg, text.OpenMetrics1(text.EscapeDots))
	require.Contains(t, got, "http_dot_requests_total 3\n")

	got = encode(t, reg, text.OpenMetrics1(text.EscapeValues))
	require.Contains(t, got, "U__http_2e_requests_total 3\n")
}

func TestEncode_EscapedNameCollision(t *testing.T) {
	reg := newRegistry(t, openmetrics.WithNameRule(openmetrics.NameRuleUTF8))
	require.NoError(t, reg.Register("a.b", "", metrics.NewGauge()))
	require.NoError(t, reg.Register("a_b", "", metrics.NewGauge()))

	var buf bytes.Buffer
	err := text.Encode(&buf, reg, text.OpenMetrics1(text.EscapeUnderscores))
	require.ErrorIs(t, err, openmetrics.ErrDuplicated)
	require.Zero(t, buf.Len())

	// the reversible values scheme cannot collide
	buf.Reset()
	require.NoError(t, text.Encode(&buf, reg, text.OpenMetrics1(text.EscapeValues)))

	// an empty family is never emitted and cannot collide
	reg2 := newRegistry(t, openmetrics.WithNameRule(openmetrics.NameRuleUTF8))
	require.NoError(t, reg2.Register("a.b", "", metrics.NewFamily[methodLabels](metrics.NewGauge)))
	require.NoError(t, reg2.Register("a_b", "", metrics.NewGauge()))
	buf.Reset()
	require.NoError(t, text.Encode(&buf, reg2, text.OpenMetrics1(text.EscapeUnderscores)))
	require.Contains(t, buf.String(), "a_b 0\n")
}

type dottedLabels struct {
	A string
	B string
}

func (l dottedLabels) AppendLabels(dst []openmetrics.Label) []openmetrics.Label {
	return append(dst,
		openmetrics.Label{Name: "a.b", Value: l.A},
		openmetrics.Label{Name: "a_b", Value: l.B},
	)
}

func TestEncode_EscapedLabelNameCollision(t *testing.T) {
	reg := newRegistry(t, openmetrics.WithNameRule(openmetrics.NameRuleUTF8))
	f := metrics.NewFamily[dottedLabels](metrics.NewCounter)
	f.GetOrNew(dottedLabels{A: "x", B: "y"}).Inc()
	require.NoError(t, reg.Register("m", "", f))

	var buf bytes.Buffer
	err := text.Encode(&buf, reg, text.OpenMetrics1(text.EscapeUnderscores))
	require.ErrorIs(t, err, openmetrics.ErrDuplicated)

	// distinct under the reversible values scheme and under passthrough
	buf.Reset()
	require.NoError(t, text.Encode(&buf, reg, text.OpenMetrics1(text.EscapeValues)))
	buf.Reset()
	require.NoError(t, text.Encode(&buf, reg, text.OpenMetrics1(text.EscapeAllowUTF8)))
	require.Contains(t, buf.String(), `"a.b"="x"`)
}

func TestEncode_EscapedConstLabelCollision(t *testing.T) {
	reg := newRegistry(t,
		openmetrics.WithNameRule(openmetrics.NameRuleUTF8),
		openmetrics.WithConstLabels(
			openmetrics.Label{Name: "zone.id", Value: "1"},
			openmetrics.Label{Name: "zone_id", Value: "2"},
		),
	)
	c := metrics.NewCounter()
	c.Inc()
	require.NoError(t, reg.Register("m", "", c))

	var buf bytes.Buffer
	err := text.Encode(&buf, reg, text.OpenMetrics1(text.EscapeUnderscores))
	require.ErrorIs(t, err, openmetrics.ErrDuplicated)
	require.Zero(t, buf.Len())
}

func TestEncode_LabelValueEscaping(t *testing.T) {
	reg := newRegistry(t)
	i := metrics.NewInfo(openmetrics.Label{Name: "path", Value: `C:\tmp "x"` + "\n"})
	require.NoError(t, reg.Register("target", "", i))

	got := encode(t, reg, text.OpenMetrics1(text.EscapeAllowUTF8))
	require.Contains(t, got, `target_info{path="C:\\tmp \"x\"\n"} 1`+"\n")
}

func TestProfile_ContentType(t *testing.T) {
	require.Equal(t, "text/plain; version=0.0.4; charset=utf-8", text.Prometheus004().ContentType())
	require.Equal(t,
		"text/plain; version=1.0.0; charset=utf-8; escaping=values",
		text.Prometheus1(text.EscapeValues).ContentType())
	require.Equal(t,
		"application/openmetrics-text; version=1.0.0; charset=utf-8; escaping=allow-utf-8",
		text.OpenMetrics1(text.EscapeAllowUTF8).ContentType())
}
