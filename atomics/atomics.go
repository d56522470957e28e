// Package atomics provides the lock-free numeric cells backing metric
// primitives: Int64, Uint64 and Float64. All operations are safe for
// concurrent use; read-modify-write operations return the previous value so
// callers can detect transitions without a second load.
package atomics

import (
	"math"
	"sync/atomic"
)

// Int64 is an atomic signed 64-bit cell. The zero value is ready to use and
// holds 0.
type Int64 struct {
	v atomic.Int64
}

// Get returns the current value.
func (a *Int64) Get() int64 { return a.v.Load() }

// Set stores v and returns the previous value.
func (a *Int64) Set(v int64) int64 { return a.v.Swap(v) }

// Inc adds 1 and returns the previous value.
func (a *Int64) Inc() int64 { return a.Add(1) }

// Add adds delta and returns the previous value.
func (a *Int64) Add(delta int64) int64 { return a.v.Add(delta) - delta }

// Dec subtracts 1 and returns the previous value.
func (a *Int64) Dec() int64 { return a.Add(-1) }

// Sub subtracts delta and returns the previous value.
func (a *Int64) Sub(delta int64) int64 { return a.Add(-delta) }

// Update applies f to the current value in a compare-and-swap loop and returns
// the previous value. f may be called multiple times under contention and must
// be pure.
func (a *Int64) Update(f func(int64) int64) int64 {
	for {
		old := a.v.Load()
		if a.v.CompareAndSwap(old, f(old)) {
			return old
		}
	}
}

// AddSaturating adds delta, clamping at math.MaxInt64 and math.MinInt64
// instead of wrapping, and returns the previous value.
func (a *Int64) AddSaturating(delta int64) int64 {
	return a.Update(func(old int64) int64 {
		sum := old + delta
		if delta > 0 && sum < old {
			return math.MaxInt64
		}
		if delta < 0 && sum > old {
			return math.MinInt64
		}
		return sum
	})
}

// SubSaturating subtracts delta with the same clamping as AddSaturating and
// returns the previous value.
func (a *Int64) SubSaturating(delta int64) int64 {
	return a.Update(func(old int64) int64 {
		diff := old - delta
		if delta < 0 && diff < old {
			return math.MaxInt64
		}
		if delta > 0 && diff > old {
			return math.MinInt64
		}
		return diff
	})
}

// Uint64 is an atomic unsigned 64-bit cell. The zero value is ready to use and
// holds 0.
type Uint64 struct {
	v atomic.Uint64
}

// Get returns the current value.
func (a *Uint64) Get() uint64 { return a.v.Load() }

// Set stores v and returns the previous value.
func (a *Uint64) Set(v uint64) uint64 { return a.v.Swap(v) }

// Inc adds 1 and returns the previous value.
func (a *Uint64) Inc() uint64 { return a.Add(1) }

// Add adds delta and returns the previous value.
func (a *Uint64) Add(delta uint64) uint64 { return a.v.Add(delta) - delta }

// Update applies f to the current value in a compare-and-swap loop and returns
// the previous value. f may be called multiple times under contention and must
// be pure.
func (a *Uint64) Update(f func(uint64) uint64) uint64 {
	for {
		old := a.v.Load()
		if a.v.CompareAndSwap(old, f(old)) {
			return old
		}
	}
}

// AddSaturating adds delta, clamping at math.MaxUint64, and returns the
// previous value.
func (a *Uint64) AddSaturating(delta uint64) uint64 {
	return a.Update(func(old uint64) uint64 {
		sum := old + delta
		if sum < old {
			return math.MaxUint64
		}
		return sum
	})
}

// SubSaturating subtracts delta, clamping at 0, and returns the previous
// value.
func (a *Uint64) SubSaturating(delta uint64) uint64 {
	return a.Update(func(old uint64) uint64 {
		if delta > old {
			return 0
		}
		return old - delta
	})
}

// Float64 is an atomic 64-bit float cell built on the bit pattern of the value.
// The zero value is ready to use and holds 0.
type Float64 struct {
	bits atomic.Uint64
}

// Get returns the current value.
func (a *Float64) Get() float64 { return math.Float64frombits(a.bits.Load()) }

// Set stores v and returns the previous value.
func (a *Float64) Set(v float64) float64 {
	return math.Float64frombits(a.bits.Swap(math.Float64bits(v)))
}

// Inc adds 1 and returns the previous value.
func (a *Float64) Inc() float64 { return a.Add(1) }

// Add adds delta in a compare-and-swap loop and returns the previous value.
func (a *Float64) Add(delta float64) float64 {
	return a.Update(func(old float64) float64 { return old + delta })
}

// Dec subtracts 1 and returns the previous value.
func (a *Float64) Dec() float64 { return a.Add(-1) }

// Sub subtracts delta and returns the previous value.
func (a *Float64) Sub(delta float64) float64 { return a.Add(-delta) }

// Update applies f to the current value in a compare-and-swap loop on the bit
// pattern and returns the previous value. f may be called multiple times under
// contention and must be pure.
func (a *Float64) Update(f func(float64) float64) float64 {
	for {
		oldBits := a.bits.Load()
		old := math.Float64frombits(oldBits)
		if a.bits.CompareAndSwap(oldBits, math.Float64bits(f(old))) {
			return old
		}
	}
}
