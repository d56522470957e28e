package openmetrics

import (
	"unicode"

	"github.com/ygrebnov/errorc"
)

// NameRule selects the grammar enforced for metric and label names at
// registration time.
type NameRule int

const (
	// NameRuleLegacy restricts metric names to [A-Za-z_:][A-Za-z0-9_:]* and
	// label names to [A-Za-z_][A-Za-z0-9_]*. This is the default.
	NameRuleLegacy NameRule = iota

	// NameRuleUTF8 permits any non-empty name without whitespace, control
	// characters or text-format delimiters. Lossy text escaping schemes apply
	// at encode time; escaped-name collisions are detected there.
	NameRuleUTF8
)

// IsLegacyMetricName reports whether name matches the legacy metric name
// grammar [A-Za-z_:][A-Za-z0-9_:]*.
func IsLegacyMetricName(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if i == 0 {
			if !IsLegacyMetricInitialChar(ch) {
				return false
			}
			continue
		}
		if !IsLegacyMetricChar(ch) {
			return false
		}
	}
	return true
}

// IsLegacyLabelName reports whether name matches the legacy label name grammar
// [A-Za-z_][A-Za-z0-9_]*.
func IsLegacyLabelName(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if i == 0 {
			if !IsLegacyLabelInitialChar(ch) {
				return false
			}
			continue
		}
		if !IsLegacyLabelChar(ch) {
			return false
		}
	}
	return true
}

// IsLegacyMetricInitialChar reports whether ch may start a legacy metric name.
func IsLegacyMetricInitialChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == ':'
}

// IsLegacyMetricChar reports whether ch may appear in a legacy metric name.
func IsLegacyMetricChar(ch rune) bool {
	return IsLegacyMetricInitialChar(ch) || (ch >= '0' && ch <= '9')
}

// IsLegacyLabelInitialChar reports whether ch may start a legacy label name.
func IsLegacyLabelInitialChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

// IsLegacyLabelChar reports whether ch may appear in a legacy label name.
func IsLegacyLabelChar(ch rune) bool {
	return IsLegacyLabelInitialChar(ch) || (ch >= '0' && ch <= '9')
}

// isTextDelimiterChar rejects, under the UTF-8 rule, characters that would
// break the text exposition grammar even when quoted.
func isTextDelimiterChar(ch rune) bool {
	switch ch {
	case '"', '\\', '{', '}', '=', ',':
		return true
	}
	return false
}

func validUTF8Name(name string) bool {
	if name == "" {
		return false
	}
	for _, ch := range name {
		if unicode.IsSpace(ch) || unicode.IsControl(ch) || isTextDelimiterChar(ch) {
			return false
		}
	}
	return true
}

func validateMetricName(name string, rule NameRule) error {
	valid := false
	switch rule {
	case NameRuleUTF8:
		valid = validUTF8Name(name)
	default:
		valid = IsLegacyMetricName(name)
	}
	if !valid {
		return errorc.With(ErrInvalid,
			errorc.String("metric", name),
			errorc.String("reason", "name does not match the configured name rule"),
		)
	}
	return nil
}

func validateLabelName(name string, rule NameRule) error {
	valid := false
	switch rule {
	case NameRuleUTF8:
		valid = validUTF8Name(name)
	default:
		valid = IsLegacyLabelName(name)
	}
	if !valid {
		return errorc.With(ErrInvalid,
			errorc.String("label", name),
			errorc.String("reason", "name does not match the configured name rule"),
		)
	}
	return nil
}

// validateHelpText rejects raw line feeds, unescaped double quotes and a
// dangling trailing backslash. Pre-escaped sequences (\\, \", \n) pass through.
func validateHelpText(help string) error {
	runes := []rune(help)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			return errorc.With(ErrInvalid,
				errorc.String("reason", "help text must not contain line feed characters; escape them as \\n"),
			)
		case '"':
			return errorc.With(ErrInvalid,
				errorc.String("reason", "double quotes inside help text must be escaped as \\\""),
			)
		case '\\':
			if i == len(runes)-1 {
				return errorc.With(ErrInvalid,
					errorc.String("reason", "help text ends with a dangling backslash"),
				)
			}
			// consume the escaped character
			i++
		}
	}
	return nil
}

// validateUnit enforces the unit string grammar; units always use the legacy
// charset regardless of the metric name rule.
func validateUnit(unit Unit) error {
	if unit == UnitNone {
		return nil
	}
	if !IsLegacyMetricName(string(unit)) {
		return errorc.With(ErrInvalid,
			errorc.String("unit", string(unit)),
			errorc.String("reason", "unit string does not match [A-Za-z_:][A-Za-z0-9_:]*"),
		)
	}
	return nil
}

// reservedLabel returns the label name reserved by the metric type, if any.
func reservedLabel(ty MetricType) (string, bool) {
	switch ty {
	case MetricTypeHistogram, MetricTypeGaugeHistogram:
		return BucketLabel, true
	case MetricTypeSummary:
		return QuantileLabel, true
	}
	return "", false
}
