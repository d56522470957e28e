package openmetrics

import "strings"

// Unit is the measurement unit of a metric family. The zero value means "no
// unit". Custom units are created by converting a lowercase string: Unit("foos").
type Unit string

// Standard OpenMetrics base units.
const (
	UnitNone    Unit = ""
	UnitSeconds Unit = "seconds"
	UnitBytes   Unit = "bytes"
	UnitJoules  Unit = "joules"
	UnitGrams   Unit = "grams"
	UnitMeters  Unit = "meters"
	UnitRatios  Unit = "ratios"
	UnitVolts   Unit = "volts"
	UnitAmperes Unit = "amperes"
	UnitCelsius Unit = "celsius"
)

// String returns the unit suffix, empty for UnitNone.
func (u Unit) String() string { return string(u) }

// Metadata identifies a metric family in a registry: name, help text, type and
// optional unit. Two registrations conflict when name, type and unit all match.
type Metadata struct {
	name string
	help string
	ty   MetricType
	unit Unit
}

// NewMetadata builds family metadata. A terminal period is appended to the help
// text when missing, so exposition output reads as a sentence.
func NewMetadata(name, help string, ty MetricType, unit Unit) Metadata {
	if help != "" && !strings.HasSuffix(help, ".") {
		help += "."
	}
	return Metadata{name: name, help: help, ty: ty, unit: unit}
}

// Name returns the family name, without namespace prefix or unit suffix.
func (m Metadata) Name() string { return m.name }

// Help returns the help text.
func (m Metadata) Help() string { return m.help }

// MetricType returns the family's metric type.
func (m Metadata) MetricType() MetricType { return m.ty }

// Unit returns the family's unit, UnitNone when absent.
func (m Metadata) Unit() Unit { return m.unit }

// key is the registry uniqueness key: help is intentionally excluded, matching
// the data model's duplicate definition.
func (m Metadata) key() metadataKey {
	return metadataKey{name: m.name, ty: m.ty, unit: m.unit}
}

type metadataKey struct {
	name string
	ty   MetricType
	unit Unit
}
