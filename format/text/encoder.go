package text

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/openmetrics"
)

// Encode renders every non-empty metric family of the registry to w in the
// given profile. Families are rendered in registration order, subsystems
// after their parent's own families.
//
// When the registry uses the UTF-8 name rule and the profile's escaping
// scheme is lossy, distinct family names escaping to the same output are
// rejected with ErrDuplicated before anything is written; distinct label
// names colliding within one sample's label block are rejected as the sample
// is reached.
func Encode(w io.Writer, reg *openmetrics.Registry, profile Profile) error {
	lossyNames := reg.NameRule() == openmetrics.NameRuleUTF8 && profile.scheme.lossy()
	if lossyNames {
		if err := checkEscapedCollisions(reg, profile); err != nil {
			return err
		}
	}

	e := &encoder{w: w, p: profile, lossyNames: lossyNames}
	if err := reg.Each(e.encodeFamily); err != nil {
		return err
	}
	if profile.emitEOF {
		if _, err := io.WriteString(w, "# EOF\n"); err != nil {
			return writeError(err)
		}
	}
	return nil
}

// writeError classifies an output writer failure.
func writeError(err error) error {
	return errorc.With(openmetrics.ErrUnexpected, errorc.String("write", err.Error()))
}

// familyName returns the exposition name of the family under the profile:
// namespace chain plus family name, with the unit appended when the profile
// embeds units in names and the name does not already end with it.
func familyName(v openmetrics.FamilyView, p Profile) string {
	name := v.FullName()
	unit := v.Metadata.Unit().String()
	if p.appendUnitSuffix && unit != "" && !strings.HasSuffix(name, "_"+unit) {
		name += "_" + unit
	}
	return name
}

func checkEscapedCollisions(reg *openmetrics.Registry, p Profile) error {
	seen := make(map[string]string)
	return reg.Each(func(v openmetrics.FamilyView) error {
		if v.Metric.Empty() {
			return nil
		}
		name := familyName(v, p)
		escaped, _ := escapeMetricName(name, p.scheme)
		if prev, ok := seen[escaped]; ok && prev != name {
			return errorc.With(openmetrics.ErrDuplicated,
				errorc.String("metric", name),
				errorc.String("collides_with", prev),
				errorc.String("escaped", escaped),
			)
		}
		seen[escaped] = name
		return nil
	})
}

func (p Profile) typeName(ty openmetrics.MetricType) (string, error) {
	if p.promCompat {
		switch ty {
		case openmetrics.MetricTypeUnknown:
			return "untyped", nil
		case openmetrics.MetricTypeStateSet, openmetrics.MetricTypeInfo,
			openmetrics.MetricTypeGaugeHistogram, openmetrics.MetricTypeSummary:
			return "", errorc.With(openmetrics.ErrUnsupported,
				errorc.String("type", ty.String()),
				errorc.String("reason", "metric type is not representable in the Prometheus text format"),
			)
		}
	}
	return ty.String(), nil
}

type renderedLabel struct {
	name   string
	quoted bool
	value  string
}

// encoder implements openmetrics.MetricEncoder for one family at a time: the
// family context (name, constant labels) is set by encodeFamily, the series
// context by EncodeSeries.
type encoder struct {
	w          io.Writer
	p          Profile
	lossyNames bool

	rawName    string
	name       string
	nameQuoted bool

	constLabels  []renderedLabel
	seriesLabels []renderedLabel
	ts           []byte

	buf     []byte
	scratch []byte
}

func (e *encoder) renderLabels(dst []renderedLabel, labels []openmetrics.Label) []renderedLabel {
	for _, l := range labels {
		escaped, legacyOK := escapeLabelName(l.Name, e.p.scheme)
		dst = append(dst, renderedLabel{name: escaped, quoted: !legacyOK, value: l.Value})
	}
	return dst
}

// checkLabelCollision rejects a sample whose constant and series labels carry
// distinct names escaping to the same output under a lossy scheme.
func (e *encoder) checkLabelCollision() error {
	if !e.lossyNames {
		return nil
	}
	seen := make(map[string]struct{}, len(e.constLabels)+len(e.seriesLabels))
	for _, labels := range [][]renderedLabel{e.constLabels, e.seriesLabels} {
		for _, l := range labels {
			if _, ok := seen[l.name]; ok {
				return errorc.With(openmetrics.ErrDuplicated,
					errorc.String("metric", e.rawName),
					errorc.String("label", l.name),
					errorc.String("reason", "distinct label names collide after escaping"),
				)
			}
			seen[l.name] = struct{}{}
		}
	}
	return nil
}

func (e *encoder) encodeFamily(v openmetrics.FamilyView) error {
	m := v.Metric
	if m.Empty() {
		return nil
	}
	ty := m.MetricType()
	typeName, err := e.p.typeName(ty)
	if err != nil {
		return errorc.With(err, errorc.String("metric", v.Metadata.Name()))
	}

	e.rawName = familyName(v, e.p)
	e.name, e.nameQuoted = func() (string, bool) {
		escaped, legacyOK := escapeMetricName(e.rawName, e.p.scheme)
		return escaped, !legacyOK
	}()
	e.constLabels = e.renderLabels(e.constLabels[:0], v.ConstLabels)
	e.seriesLabels = e.seriesLabels[:0]
	e.ts = nil
	if err := e.checkLabelCollision(); err != nil {
		return err
	}

	if err := e.writeMetadataLine("TYPE", typeName); err != nil {
		return err
	}
	if unit := v.Metadata.Unit().String(); e.p.emitUnitLine && unit != "" {
		if err := e.writeMetadataLine("UNIT", unit); err != nil {
			return err
		}
	}
	if help := v.Metadata.Help(); help != "" {
		if err := e.writeMetadataLine("HELP", help); err != nil {
			return err
		}
	}

	if tm, ok := m.(openmetrics.TimestampedMetric); ok {
		if t, has := tm.Timestamp(); has {
			e.ts = appendTimestamp(nil, t, e.p.timestampMillis)
		}
	}
	return m.Encode(e)
}

func (e *encoder) writeMetadataLine(keyword, rest string) error {
	buf := e.buf[:0]
	buf = append(buf, "# "...)
	buf = append(buf, keyword...)
	buf = append(buf, ' ')
	if e.nameQuoted {
		buf = append(buf, '"')
		buf = append(buf, e.name...)
		buf = append(buf, '"')
	} else {
		buf = append(buf, e.name...)
	}
	buf = append(buf, ' ')
	buf = append(buf, rest...)
	buf = append(buf, '\n')
	e.buf = buf
	if _, err := e.w.Write(buf); err != nil {
		return writeError(err)
	}
	return nil
}

// writeSample writes one sample line: name with suffix, the label block
// (constant labels, series labels, extra reserved labels), the value, and the
// optional timestamp and exemplar.
func (e *encoder) writeSample(suffix string, extra []renderedLabel, value []byte, ex *openmetrics.Exemplar) error {
	buf := e.buf[:0]
	labelCount := len(e.constLabels) + len(e.seriesLabels) + len(extra)

	if e.nameQuoted {
		buf = append(buf, '{', '"')
		buf = append(buf, e.name...)
		buf = append(buf, suffix...)
		buf = append(buf, '"')
		buf = e.appendLabelBlock(buf, extra, true)
		buf = append(buf, '}')
	} else {
		buf = append(buf, e.name...)
		buf = append(buf, suffix...)
		if labelCount > 0 {
			buf = append(buf, '{')
			buf = e.appendLabelBlock(buf, extra, false)
			buf = append(buf, '}')
		}
	}

	buf = append(buf, ' ')
	buf = append(buf, value...)
	if len(e.ts) > 0 {
		buf = append(buf, ' ')
		buf = append(buf, e.ts...)
	}
	if ex != nil && e.p.emitExemplars {
		buf = e.appendExemplar(buf, ex)
	}
	buf = append(buf, '\n')
	e.buf = buf
	if _, err := e.w.Write(buf); err != nil {
		return writeError(err)
	}
	return nil
}

// appendLabelBlock appends the comma separated label pairs. leadingComma is
// set in the quoted name syntax, where the name occupies the first position of
// the brace block.
func (e *encoder) appendLabelBlock(buf []byte, extra []renderedLabel, leadingComma bool) []byte {
	first := !leadingComma
	emit := func(l renderedLabel) {
		if !first {
			buf = append(buf, ',')
		}
		first = false
		if l.quoted {
			buf = append(buf, '"')
			buf = append(buf, l.name...)
			buf = append(buf, '"')
		} else {
			buf = append(buf, l.name...)
		}
		buf = append(buf, '=', '"')
		buf = appendEscapedLabelValue(buf, l.value)
		buf = append(buf, '"')
	}
	for _, l := range e.constLabels {
		emit(l)
	}
	for _, l := range e.seriesLabels {
		emit(l)
	}
	for _, l := range extra {
		emit(l)
	}
	return buf
}

func (e *encoder) appendExemplar(buf []byte, ex *openmetrics.Exemplar) []byte {
	buf = append(buf, " # {"...)
	for i, l := range ex.Labels {
		if i > 0 {
			buf = append(buf, ',')
		}
		escaped, legacyOK := escapeLabelName(l.Name, e.p.scheme)
		if !legacyOK {
			buf = append(buf, '"')
			buf = append(buf, escaped...)
			buf = append(buf, '"')
		} else {
			buf = append(buf, escaped...)
		}
		buf = append(buf, '=', '"')
		buf = appendEscapedLabelValue(buf, l.Value)
		buf = append(buf, '"')
	}
	buf = append(buf, "} "...)
	buf = openmetrics.AppendFloat(buf, ex.Value)
	if !ex.Timestamp.IsZero() {
		buf = append(buf, ' ')
		buf = appendTimestamp(buf, ex.Timestamp, false)
	}
	return buf
}

// appendTimestamp renders t as integer milliseconds (Prometheus) or as
// seconds with a fixed three digit fraction (OpenMetrics).
func appendTimestamp(dst []byte, t time.Time, millis bool) []byte {
	ms := t.UnixMilli()
	if millis {
		return strconv.AppendInt(dst, ms, 10)
	}
	sec, frac := ms/1000, ms%1000
	if frac < 0 {
		sec--
		frac += 1000
	}
	dst = strconv.AppendInt(dst, sec, 10)
	dst = append(dst, '.')
	if frac < 100 {
		dst = append(dst, '0')
	}
	if frac < 10 {
		dst = append(dst, '0')
	}
	return strconv.AppendInt(dst, frac, 10)
}

func (e *encoder) EncodeCounter(total openmetrics.Number, exemplar *openmetrics.Exemplar, created time.Time) error {
	suffix := ""
	if e.p.counterTotalSuffix {
		suffix = "_total"
	}
	if err := e.writeSample(suffix, nil, total.Append(e.scratch[:0]), exemplar); err != nil {
		return err
	}
	if e.p.emitCreated && !created.IsZero() {
		return e.writeSample("_created", nil, appendTimestamp(e.scratch[:0], created, false), nil)
	}
	return nil
}

func (e *encoder) EncodeGauge(value openmetrics.Number) error {
	return e.writeSample("", nil, value.Append(e.scratch[:0]), nil)
}

func (e *encoder) EncodeUnknown(value openmetrics.Number) error {
	return e.writeSample("", nil, value.Append(e.scratch[:0]), nil)
}

func (e *encoder) encodeBuckets(buckets []openmetrics.Bucket, exemplars []*openmetrics.Exemplar) error {
	cumulative := uint64(0)
	for i, b := range buckets {
		cumulative += b.Count
		le := renderedLabel{
			name:  openmetrics.BucketLabel,
			value: string(openmetrics.AppendFloat(nil, b.UpperBound)),
		}
		var ex *openmetrics.Exemplar
		if i < len(exemplars) {
			ex = exemplars[i]
		}
		value := strconv.AppendUint(e.scratch[:0], cumulative, 10)
		if err := e.writeSample("_bucket", []renderedLabel{le}, value, ex); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) EncodeHistogram(buckets []openmetrics.Bucket, exemplars []*openmetrics.Exemplar, count uint64, sum float64, created time.Time) error {
	if err := e.encodeBuckets(buckets, exemplars); err != nil {
		return err
	}
	if err := e.writeSample("_count", nil, strconv.AppendUint(e.scratch[:0], count, 10), nil); err != nil {
		return err
	}
	if err := e.writeSample("_sum", nil, openmetrics.AppendFloat(e.scratch[:0], sum), nil); err != nil {
		return err
	}
	if e.p.emitCreated && !created.IsZero() {
		return e.writeSample("_created", nil, appendTimestamp(e.scratch[:0], created, false), nil)
	}
	return nil
}

func (e *encoder) EncodeGaugeHistogram(buckets []openmetrics.Bucket, gcount uint64, gsum float64) error {
	if err := e.encodeBuckets(buckets, nil); err != nil {
		return err
	}
	if err := e.writeSample("_gcount", nil, strconv.AppendUint(e.scratch[:0], gcount, 10), nil); err != nil {
		return err
	}
	return e.writeSample("_gsum", nil, openmetrics.AppendFloat(e.scratch[:0], gsum), nil)
}

func (e *encoder) EncodeStateSet(states []openmetrics.State) error {
	stateLabel, legacyOK := escapeLabelName(e.rawName, e.p.scheme)
	for _, s := range states {
		value := byte('0')
		if s.Enabled {
			value = '1'
		}
		lbl := renderedLabel{name: stateLabel, quoted: !legacyOK, value: s.Name}
		if err := e.writeSample("", []renderedLabel{lbl}, []byte{value}, nil); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) EncodeInfo(labels openmetrics.LabelSet) error {
	rendered := e.renderLabels(nil, labels.AppendLabels(nil))
	return e.writeSample("_info", rendered, []byte{'1'}, nil)
}

func (e *encoder) EncodeSummary(quantiles []openmetrics.Quantile, count uint64, sum float64, created time.Time) error {
	for _, q := range quantiles {
		lbl := renderedLabel{
			name:  openmetrics.QuantileLabel,
			value: string(openmetrics.AppendFloat(nil, q.Quantile)),
		}
		value := openmetrics.AppendFloat(e.scratch[:0], q.Value)
		if err := e.writeSample("", []renderedLabel{lbl}, value, nil); err != nil {
			return err
		}
	}
	if err := e.writeSample("_count", nil, strconv.AppendUint(e.scratch[:0], count, 10), nil); err != nil {
		return err
	}
	if err := e.writeSample("_sum", nil, openmetrics.AppendFloat(e.scratch[:0], sum), nil); err != nil {
		return err
	}
	if e.p.emitCreated && !created.IsZero() {
		return e.writeSample("_created", nil, appendTimestamp(e.scratch[:0], created, false), nil)
	}
	return nil
}

func (e *encoder) EncodeSeries(labels openmetrics.LabelSet, metric openmetrics.Metric) error {
	savedLabels := e.seriesLabels
	savedTS := e.ts
	e.seriesLabels = e.renderLabels(nil, labels.AppendLabels(nil))
	if tm, ok := metric.(openmetrics.TimestampedMetric); ok {
		if t, has := tm.Timestamp(); has {
			e.ts = appendTimestamp(nil, t, e.p.timestampMillis)
		}
	}
	err := e.checkLabelCollision()
	if err == nil {
		err = metric.Encode(e)
	}
	e.seriesLabels = savedLabels
	e.ts = savedTS
	return err
}
