package openmetrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumber_Kinds(t *testing.T) {
	n := Int64Number(-5)
	require.Equal(t, Int64Kind, n.Kind())
	require.Equal(t, int64(-5), n.Int64())
	require.Equal(t, float64(-5), n.Float64())

	n = Uint64Number(math.MaxUint64)
	require.Equal(t, Uint64Kind, n.Kind())
	require.Equal(t, uint64(math.MaxUint64), n.Uint64())

	n = Float64Number(2.5)
	require.Equal(t, Float64Kind, n.Kind())
	require.Equal(t, 2.5, n.Float64())
}

func TestNumber_String(t *testing.T) {
	require.Equal(t, "-5", Int64Number(-5).String())
	require.Equal(t, "18446744073709551615", Uint64Number(math.MaxUint64).String())
	require.Equal(t, "2.5", Float64Number(2.5).String())
	require.Equal(t, "100", Float64Number(100).String())
}

func TestAppendFloat(t *testing.T) {
	require.Equal(t, "NaN", string(AppendFloat(nil, math.NaN())))
	require.Equal(t, "+Inf", string(AppendFloat(nil, math.Inf(1))))
	require.Equal(t, "-Inf", string(AppendFloat(nil, math.Inf(-1))))
	require.Equal(t, "0", string(AppendFloat(nil, 0)))
	require.Equal(t, "0.005", string(AppendFloat(nil, 0.005)))
	// shortest round-trip form
	require.Equal(t, "0.1", string(AppendFloat(nil, 0.1)))
}
