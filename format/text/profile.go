// Package text implements the Prometheus and OpenMetrics text exposition
// formats. An exposition is produced by walking a registry and rendering every
// non-empty metric family in the selected profile.
package text

// EscapingScheme selects how metric and label names that do not fit the legacy
// Prometheus charset are rendered in text output.
type EscapingScheme int

const (
	// EscapeAllowUTF8 passes names through unchanged; names outside the
	// legacy charset use the quoted syntax inside the sample's brace block.
	EscapeAllowUTF8 EscapingScheme = iota

	// EscapeUnderscores replaces every illegal character with an underscore.
	EscapeUnderscores

	// EscapeDots replaces dots with "_dot_", underscores with "__" and other
	// illegal characters with an underscore.
	EscapeDots

	// EscapeValues prefixes escaped names with "U__", doubles underscores and
	// renders other illegal characters as their hex code point between
	// underscores. The transformation is reversible with UnescapeName.
	EscapeValues
)

// String returns the scheme name used in the escaping content type parameter.
func (s EscapingScheme) String() string {
	switch s {
	case EscapeUnderscores:
		return "underscores"
	case EscapeDots:
		return "dots"
	case EscapeValues:
		return "values"
	default:
		return "allow-utf-8"
	}
}

// lossy reports whether two distinct names can escape to the same output.
func (s EscapingScheme) lossy() bool {
	return s == EscapeUnderscores || s == EscapeDots
}

// Profile selects the exposition dialect: content type, escaping scheme and
// the emission rules that differ between Prometheus and OpenMetrics text.
type Profile struct {
	contentType string
	scheme      EscapingScheme

	emitEOF            bool
	emitUnitLine       bool
	appendUnitSuffix   bool
	counterTotalSuffix bool
	emitCreated        bool
	emitExemplars      bool
	promCompat         bool
	timestampMillis    bool
}

// Prometheus004 is the classic Prometheus text format, version 0.0.4. Names
// are always escaped with underscores; StateSet, Info, GaugeHistogram and
// Summary metrics are not expressible and fail with ErrUnsupported.
func Prometheus004() Profile {
	return Profile{
		contentType:      "text/plain; version=0.0.4; charset=utf-8",
		scheme:           EscapeUnderscores,
		appendUnitSuffix: true,
		promCompat:       true,
		timestampMillis:  true,
	}
}

// Prometheus1 is the Prometheus text format, version 1.0.0, which adds
// UTF-8 name support under a selectable escaping scheme.
func Prometheus1(scheme EscapingScheme) Profile {
	return Profile{
		contentType:      "text/plain; version=1.0.0; charset=utf-8; escaping=" + scheme.String(),
		scheme:           scheme,
		appendUnitSuffix: true,
		promCompat:       true,
		timestampMillis:  true,
	}
}

// OpenMetrics1 is the OpenMetrics text format, version 1.0.0.
func OpenMetrics1(scheme EscapingScheme) Profile {
	return Profile{
		contentType:        "application/openmetrics-text; version=1.0.0; charset=utf-8; escaping=" + scheme.String(),
		scheme:             scheme,
		emitEOF:            true,
		emitUnitLine:       true,
		appendUnitSuffix:   true,
		counterTotalSuffix: true,
		emitExemplars:      true,
	}
}

// WithCreatedSeries returns a copy of the profile that also emits _created
// series for counters, histograms and summaries carrying a creation
// timestamp. Only OpenMetrics profiles render them; on the Prometheus
// profiles, whose grammar predates _created, the flag has no effect. The knob
// is off by default because _created multiplies series cardinality on every
// scrape.
func (p Profile) WithCreatedSeries(emit bool) Profile {
	p.emitCreated = emit && !p.promCompat
	return p
}

// ContentType returns the HTTP Content-Type header value of the profile.
func (p Profile) ContentType() string { return p.contentType }

// Scheme returns the profile's escaping scheme.
func (p Profile) Scheme() EscapingScheme { return p.scheme }
