package openmetrics

import (
	"sync"

	"github.com/ygrebnov/errorc"
)

var (
	globalMu  sync.Mutex
	globalReg *Registry
)

// Default returns the process-wide default registry, creating an empty one
// with default options on first use.
func Default() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalReg == nil {
		reg, err := NewRegistry()
		if err != nil {
			// NewRegistry without options cannot fail.
			panic(err)
		}
		globalReg = reg
	}
	return globalReg
}

// SetDefault installs reg as the process-wide default registry. It fails once
// the default has already been set or observed through Default, so metrics
// registered earlier cannot be silently orphaned.
func SetDefault(reg *Registry) error {
	if reg == nil {
		return errorc.With(ErrInvalid, errorc.String("reason", "default registry must not be nil"))
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalReg != nil {
		return errorc.With(ErrDuplicated, errorc.String("reason", "default registry already set"))
	}
	globalReg = reg
	return nil
}

// Register adds a metric family to the default registry.
func Register(name, help string, metric Metric) error {
	return Default().Register(name, help, metric)
}

// RegisterWithUnit adds a metric family with a unit to the default registry.
func RegisterWithUnit(name, help string, unit Unit, metric Metric) error {
	return Default().RegisterWithUnit(name, help, unit, metric)
}

// MustRegister adds a metric family to the default registry, panicking on
// error.
func MustRegister(name, help string, metric Metric) {
	Default().MustRegister(name, help, metric)
}

// Subsystem returns a child of the default registry, creating it on first use.
func Subsystem(name string, constLabels ...Label) (*Registry, error) {
	return Default().Subsystem(name, constLabels...)
}
