package metrics

import (
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/openmetrics"
	"github.com/ygrebnov/openmetrics/atomics"
)

// StateSet is a set of mutually exclusive states of which exactly one is
// enabled at a time, such as a connection being "connected", "degraded" or
// "down". The first declared state is enabled initially.
type StateSet struct {
	names   []string
	current atomics.Int64
	index   map[string]int
}

// NewStateSet builds a state set from the given state names. At least one
// state is required and names must be unique.
func NewStateSet(states ...string) (*StateSet, error) {
	if len(states) == 0 {
		return nil, errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "state set needs at least one state"),
		)
	}
	index := make(map[string]int, len(states))
	for i, name := range states {
		if name == "" {
			return nil, errorc.With(openmetrics.ErrInvalid,
				errorc.String("reason", "state name must not be empty"),
			)
		}
		if _, ok := index[name]; ok {
			return nil, errorc.With(openmetrics.ErrDuplicated,
				errorc.String("state", name),
				errorc.String("reason", "state declared twice"),
			)
		}
		index[name] = i
	}
	names := make([]string, len(states))
	copy(names, states)
	return &StateSet{names: names, index: index}, nil
}

// MustNewStateSet is NewStateSet that panics on error.
func MustNewStateSet(states ...string) *StateSet {
	s, err := NewStateSet(states...)
	if err != nil {
		panic(err)
	}
	return s
}

// Set enables the named state, disabling the previously enabled one.
func (s *StateSet) Set(name string) error {
	i, ok := s.index[name]
	if !ok {
		return errorc.With(openmetrics.ErrInvalid,
			errorc.String("state", name),
			errorc.String("reason", "state is not declared in this set"),
		)
	}
	s.current.Set(int64(i))
	return nil
}

// SetIndex enables the state at declaration position i.
func (s *StateSet) SetIndex(i int) error {
	if i < 0 || i >= len(s.names) {
		return errorc.With(openmetrics.ErrInvalid,
			errorc.String("reason", "state index out of range"),
		)
	}
	s.current.Set(int64(i))
	return nil
}

// Current returns the name of the currently enabled state.
func (s *StateSet) Current() string {
	return s.names[s.current.Get()]
}

// States returns the declared state names in declaration order.
func (s *StateSet) States() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// MetricType implements openmetrics.Metric.
func (s *StateSet) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeStateSet }

// Empty implements openmetrics.Metric.
func (s *StateSet) Empty() bool { return false }

// Encode implements openmetrics.Metric.
func (s *StateSet) Encode(enc openmetrics.MetricEncoder) error {
	current := int(s.current.Get())
	states := make([]openmetrics.State, len(s.names))
	for i, name := range s.names {
		states[i] = openmetrics.State{Name: name, Enabled: i == current}
	}
	return enc.EncodeStateSet(states)
}

// ConstStateSet is an immutable state set sample. Unlike StateSet it permits
// any combination of enabled states, mirroring external sources that are not
// mutually exclusive.
type ConstStateSet struct {
	states []openmetrics.State
	ts     time.Time
	hasTS  bool
}

// NewConstStateSet returns a constant state set sample.
func NewConstStateSet(states ...openmetrics.State) ConstStateSet {
	copied := make([]openmetrics.State, len(states))
	copy(copied, states)
	return ConstStateSet{states: copied}
}

// WithTimestamp returns a copy carrying an explicit sample timestamp.
func (s ConstStateSet) WithTimestamp(t time.Time) ConstStateSet {
	s.ts = t
	s.hasTS = true
	return s
}

// MetricType implements openmetrics.Metric.
func (s ConstStateSet) MetricType() openmetrics.MetricType { return openmetrics.MetricTypeStateSet }

// Empty implements openmetrics.Metric.
func (s ConstStateSet) Empty() bool { return len(s.states) == 0 }

// Encode implements openmetrics.Metric.
func (s ConstStateSet) Encode(enc openmetrics.MetricEncoder) error {
	return enc.EncodeStateSet(s.states)
}

// Timestamp implements openmetrics.TimestampedMetric.
func (s ConstStateSet) Timestamp() (time.Time, bool) { return s.ts, s.hasTS }
