package openmetrics

import (
	"math"
	"strconv"
)

// NumberKind discriminates the active representation of a Number.
type NumberKind uint8

const (
	// Int64Kind marks a signed integer Number.
	Int64Kind NumberKind = iota
	// Uint64Kind marks an unsigned integer Number.
	Uint64Kind
	// Float64Kind marks a floating point Number.
	Float64Kind
)

// Number is a sample value carried from metrics to encoders. It preserves the
// source representation so integer counters keep full 64-bit precision in the
// text format while protobuf encoders can pick the matching value oneof.
type Number struct {
	kind NumberKind
	i    int64
	u    uint64
	f    float64
}

// Int64Number returns a Number holding a signed integer.
func Int64Number(v int64) Number { return Number{kind: Int64Kind, i: v} }

// Uint64Number returns a Number holding an unsigned integer.
func Uint64Number(v uint64) Number { return Number{kind: Uint64Kind, u: v} }

// Float64Number returns a Number holding a float.
func Float64Number(v float64) Number { return Number{kind: Float64Kind, f: v} }

// Kind reports which representation is active.
func (n Number) Kind() NumberKind { return n.kind }

// Int64 returns the signed integer representation. Valid only for Int64Kind.
func (n Number) Int64() int64 { return n.i }

// Uint64 returns the unsigned integer representation. Valid only for Uint64Kind.
func (n Number) Uint64() uint64 { return n.u }

// Float64 returns the value converted to float64, regardless of kind.
func (n Number) Float64() float64 {
	switch n.kind {
	case Int64Kind:
		return float64(n.i)
	case Uint64Kind:
		return float64(n.u)
	default:
		return n.f
	}
}

// Append appends the shortest exact textual form of the value to dst and
// returns the extended slice. Floats use the shortest representation that
// round-trips, matching the exposition formats emitted by other clients.
func (n Number) Append(dst []byte) []byte {
	switch n.kind {
	case Int64Kind:
		return strconv.AppendInt(dst, n.i, 10)
	case Uint64Kind:
		return strconv.AppendUint(dst, n.u, 10)
	default:
		return AppendFloat(dst, n.f)
	}
}

// String returns the textual form of the value, as produced by Append.
func (n Number) String() string {
	return string(n.Append(nil))
}

// AppendFloat appends the shortest round-trip decimal form of v to dst.
// Infinities render as "+Inf"/"-Inf" and NaN as "NaN", per the exposition
// format grammar.
func AppendFloat(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "NaN"...)
	case math.IsInf(v, 1):
		return append(dst, "+Inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-Inf"...)
	default:
		return strconv.AppendFloat(dst, v, 'g', -1, 64)
	}
}
