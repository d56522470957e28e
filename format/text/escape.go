package text

import (
	"strconv"
	"strings"

	"github.com/ygrebnov/openmetrics"
)

// escapeMetricName renders a metric family name under the scheme. The second
// result reports whether the output fits the legacy charset; when it does not
// (possible only under EscapeAllowUTF8) the encoder uses the quoted syntax.
func escapeMetricName(name string, scheme EscapingScheme) (string, bool) {
	return escapeName(name, scheme, false)
}

// escapeLabelName is escapeMetricName for label names, whose legacy charset
// excludes the colon.
func escapeLabelName(name string, scheme EscapingScheme) (string, bool) {
	return escapeName(name, scheme, true)
}

func escapeName(name string, scheme EscapingScheme, label bool) (string, bool) {
	legacy := func(s string) bool {
		if label {
			return openmetrics.IsLegacyLabelName(s)
		}
		return openmetrics.IsLegacyMetricName(s)
	}
	initialOK := func(ch rune) bool {
		if label {
			return openmetrics.IsLegacyLabelInitialChar(ch)
		}
		return openmetrics.IsLegacyMetricInitialChar(ch)
	}
	charOK := func(ch rune) bool {
		if label {
			return openmetrics.IsLegacyLabelChar(ch)
		}
		return openmetrics.IsLegacyMetricChar(ch)
	}

	if legacy(name) {
		return name, true
	}

	var b strings.Builder
	switch scheme {
	case EscapeAllowUTF8:
		return name, false

	case EscapeUnderscores:
		for i, ch := range name {
			ok := charOK(ch)
			if i == 0 {
				ok = initialOK(ch)
			}
			if ok {
				b.WriteRune(ch)
			} else {
				b.WriteByte('_')
			}
		}

	case EscapeDots:
		for i, ch := range name {
			switch {
			case ch == '_':
				b.WriteString("__")
			case ch == '.':
				b.WriteString("_dot_")
			case i == 0 && initialOK(ch), i > 0 && charOK(ch):
				b.WriteRune(ch)
			default:
				b.WriteByte('_')
			}
		}

	case EscapeValues:
		b.WriteString("U__")
		for i, ch := range name {
			switch {
			case ch == '_':
				b.WriteString("__")
			case i == 0 && initialOK(ch), i > 0 && charOK(ch):
				b.WriteRune(ch)
			default:
				b.WriteByte('_')
				b.WriteString(strconv.FormatInt(int64(ch), 16))
				b.WriteByte('_')
			}
		}
	}
	return b.String(), true
}

// UnescapeName reverses the EscapeValues transformation. Names without the
// "U__" prefix or with a malformed escape sequence are returned unchanged.
func UnescapeName(name string) string {
	const prefix = "U__"
	if !strings.HasPrefix(name, prefix) {
		return name
	}
	body := name[len(prefix):]

	var b strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '_' {
			b.WriteRune(runes[i])
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '_' {
			b.WriteByte('_')
			i++
			continue
		}
		end := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '_' {
				end = j
				break
			}
		}
		if end < 0 {
			return name
		}
		code, err := strconv.ParseInt(string(runes[i+1:end]), 16, 32)
		if err != nil {
			return name
		}
		b.WriteRune(rune(code))
		i = end
	}
	return b.String()
}

// appendEscapedLabelValue appends value with backslash, double quote and line
// feed escaped, per the text format grammar.
func appendEscapedLabelValue(dst []byte, value string) []byte {
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\':
			dst = append(dst, '\\', '\\')
		case '"':
			dst = append(dst, '\\', '"')
		case '\n':
			dst = append(dst, '\\', 'n')
		default:
			dst = append(dst, value[i])
		}
	}
	return dst
}
